// Package records performs the generic per-record writes the sync outbox
// needs: flipping sync status, reconciling server-assigned ids, and reading
// a record back as the wire payload for an upsert. Only whitelisted tables
// are reachable.
package records

import (
	"context"
	"encoding/json"
)

// Repository is the generic record-access contract used by the sync manager.
type Repository interface {
	MarkSynced(ctx context.Context, table, recordID, remoteID string) error
	MarkFailed(ctx context.Context, table, recordID string) error
	RemoteID(ctx context.Context, table, recordID string) (*string, error)
	Payload(ctx context.Context, table, recordID string) (json.RawMessage, error)
}
