package common

// AccessTokenHeaderName is the HTTP header used to carry the access token on
// outbound requests.
const AccessTokenHeaderName = "Authorization"

// User-content tables that participate in sync. The outbox and the generic
// records repository only accept these names.
const (
	TableJournalEntries     = "journal_entries"
	TableCheckIns           = "check_ins"
	TableFavorites          = "favorites"
	TableSponsorConnections = "sponsor_connections"
)

// SyncableTables lists every table the outbox may reference, in no
// particular order.
var SyncableTables = []string{
	TableJournalEntries,
	TableCheckIns,
	TableFavorites,
	TableSponsorConnections,
}

// IsSyncableTable reports whether name is a table the sync queue accepts.
func IsSyncableTable(name string) bool {
	for _, t := range SyncableTables {
		if t == name {
			return true
		}
	}
	return false
}
