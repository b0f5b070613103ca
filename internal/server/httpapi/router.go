// Package httpapi exposes the sync API over JSON/HTTP. All record payloads
// passing through here are opaque ciphertext.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ebergstrom/daybreak/internal/logging"
	"github.com/ebergstrom/daybreak/internal/server/models"
	"github.com/ebergstrom/daybreak/internal/server/services"
)

// UserService is the authentication surface the handlers depend on.
type UserService interface {
	Register(ctx context.Context, userName string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, userName string) ([]byte, error)
	Login(ctx context.Context, userName string, verifier []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// RecordService is the record storage surface the handlers depend on.
type RecordService interface {
	Upsert(ctx context.Context, userID, tableName string, payload json.RawMessage) (string, error)
	Delete(ctx context.Context, userID, tableName, remoteID string) error
	GetPresignedPutURL(ctx context.Context) (key string, url string, err error)
	GetPresignedGetURL(ctx context.Context, key string) (string, error)
}

// Router wires the API handlers onto an http.ServeMux.
type Router struct {
	users     UserService
	records   RecordService
	jwtSecret []byte
	log       logging.Logger
}

func NewRouter(users UserService, records RecordService, jwtSecret []byte, log logging.Logger) *Router {
	return &Router{
		users:     users,
		records:   records,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

// Handler returns the fully routed http.Handler.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", rt.handlePing)
	mux.HandleFunc("POST /api/register", rt.handleRegister)
	mux.HandleFunc("POST /api/salt", rt.handleSalt)
	mux.HandleFunc("POST /api/login", rt.handleLogin)
	mux.HandleFunc("POST /api/refresh", rt.handleRefresh)

	mux.Handle("POST /api/records/{table}", rt.requireAuth(rt.handleUpsertRecord))
	mux.Handle("DELETE /api/records/{table}/{remoteID}", rt.requireAuth(rt.handleDeleteRecord))
	mux.Handle("POST /api/attachments/presign", rt.requireAuth(rt.handlePresignPut))
	mux.Handle("GET /api/attachments/url", rt.requireAuth(rt.handlePresignGet))

	return mux
}
