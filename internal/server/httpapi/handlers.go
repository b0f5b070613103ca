package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ebergstrom/daybreak/internal/common"
)

// Wire types mirror the client's expectations; salt and verifier travel as
// base64 via encoding/json's []byte handling.
type registerRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type saltRequest struct {
	Username string `json:"username"`
}

type saltResponse struct {
	Salt []byte `json:"salt"`
}

type loginRequest struct {
	Username string `json:"username"`
	Verifier []byte `json:"verifier"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type upsertResponse struct {
	RemoteID string `json:"remote_id"`
}

type presignPutResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type presignGetResponse struct {
	URL string `json:"url"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (rt *Router) handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := rt.users.Register(r.Context(), req.Username, req.Salt, req.Verifier); err != nil {
		rt.writeServiceError(w, r, "register", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (rt *Router) handleSalt(w http.ResponseWriter, r *http.Request) {
	var req saltRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	salt, err := rt.users.GetSalt(r.Context(), req.Username)
	if err != nil {
		rt.writeServiceError(w, r, "salt", err)
		return
	}

	writeJSON(w, http.StatusOK, saltResponse{Salt: salt})
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := rt.users.Login(r.Context(), req.Username, req.Verifier)
	if err != nil {
		rt.writeServiceError(w, r, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (rt *Router) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := rt.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		rt.writeServiceError(w, r, "refresh", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (rt *Router) handleUpsertRecord(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	remoteID, err := rt.records.Upsert(r.Context(), userIDFromContext(r.Context()), table, payload)
	if err != nil {
		rt.writeServiceError(w, r, "upsert record", err)
		return
	}

	writeJSON(w, http.StatusOK, upsertResponse{RemoteID: remoteID})
}

func (rt *Router) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	remoteID := r.PathValue("remoteID")

	if err := rt.records.Delete(r.Context(), userIDFromContext(r.Context()), table, remoteID); err != nil {
		rt.writeServiceError(w, r, "delete record", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handlePresignPut(w http.ResponseWriter, r *http.Request) {
	key, url, err := rt.records.GetPresignedPutURL(r.Context())
	if err != nil {
		rt.writeServiceError(w, r, "presign upload", err)
		return
	}

	writeJSON(w, http.StatusOK, presignPutResponse{Key: key, URL: url})
}

func (rt *Router) handlePresignGet(w http.ResponseWriter, r *http.Request) {
	url, err := rt.records.GetPresignedGetURL(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		rt.writeServiceError(w, r, "presign download", err)
		return
	}

	writeJSON(w, http.StatusOK, presignGetResponse{URL: url})
}

// writeServiceError maps service errors to HTTP statuses. Unclassified errors
// are logged and surfaced as plain 500s without internal detail.
func (rt *Router) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		rt.log.Error(r.Context(), "request failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
