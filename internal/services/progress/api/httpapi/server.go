// Package httpapi exposes session and progress operations over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/services/auth/identity"
	"github.com/proact-eco/proact/internal/services/progress/app"
)

type contextKey int

const identityKey contextKey = iota

// Server routes authenticated HTTP requests into the progress service.
type Server struct {
	verifier identity.VerifierConfig
	service  *app.Service
	logger   *log.Logger
}

// NewServer wires the HTTP surface over the application service.
func NewServer(verifier identity.VerifierConfig, service *app.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{verifier: verifier, service: service, logger: logger}
}

// Router builds the route table. Every /v1 route requires a bearer ID token.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(s.authenticate)
	v1.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	v1.HandleFunc("/progress", s.handleProgress).Methods(http.MethodGet)
	v1.HandleFunc("/progress/rewards", s.handleReward).Methods(http.MethodPost)
	v1.HandleFunc("/progress/refresh", s.handleRefresh).Methods(http.MethodPost)
	v1.HandleFunc("/missions/{id}/complete", s.handleCompleteMission).Methods(http.MethodPost)
	return r
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.writeError(w, apperrors.New(apperrors.CodeIdentityTokenInvalid, "missing bearer token"))
			return
		}
		ident, err := identity.VerifyIDToken(strings.TrimSpace(token), s.verifier)
		if err != nil {
			s.writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerIdentity(r *http.Request) (identity.Identity, bool) {
	ident, ok := r.Context().Value(identityKey).(identity.Identity)
	return ident, ok
}

// verifiedCaller rejects callers whose email is not verified; only session
// resolution is open to them.
func (s *Server) verifiedCaller(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	ident, ok := callerIdentity(r)
	if !ok {
		s.writeError(w, apperrors.New(apperrors.CodeIdentityTokenInvalid, "missing identity"))
		return identity.Identity{}, false
	}
	if !ident.EmailVerified {
		s.writeError(w, apperrors.New(apperrors.CodeIdentityEmailUnverified, "email address is not verified"))
		return identity.Identity{}, false
	}
	return ident, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("[PROGRESS] encode response: %v", err)
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var coded *apperrors.Error
	if !errors.As(err, &coded) {
		s.logger.Printf("[PROGRESS] internal error: %v", err)
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
			Code:    string(apperrors.CodeUnknown),
			Message: "internal error",
		}})
		return
	}
	s.writeJSON(w, coded.Code.HTTPStatus(), errorBody{Error: errorDetail{
		Code:    string(coded.Code),
		Message: coded.Message,
		Meta:    coded.Metadata,
	}})
}
