package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/services/auth/profile"
	progressdomain "github.com/proact-eco/proact/internal/services/progress/domain"
	"github.com/proact-eco/proact/internal/services/progress/mission"
)

type sessionResponse struct {
	State   string       `json:"state"`
	Profile *profileBody `json:"profile,omitempty"`
}

type profileBody struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Onboarded  bool     `json:"onboarded"`
	Locale     string   `json:"locale"`
	Location   string   `json:"location,omitempty"`
	Occupation string   `json:"occupation,omitempty"`
	Interests  []string `json:"interests,omitempty"`
}

type progressResponse struct {
	EcoPoints      int           `json:"eco_points"`
	Level          int           `json:"level"`
	ActiveMissions []missionBody `json:"active_missions"`
}

type missionBody struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Level       string        `json:"level"`
	Period      string        `json:"period,omitempty"`
	Status      string        `json:"status"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	EcoPoints   int           `json:"eco_points"`
	CO2SavedKg  int           `json:"co2_saved_kg"`
	Steps       []missionBody `json:"steps,omitempty"`
}

type rewardRequest struct {
	Points int `json:"points"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ident, ok := callerIdentity(r)
	if !ok {
		s.writeError(w, apperrors.New(apperrors.CodeIdentityTokenInvalid, "missing identity"))
		return
	}
	state, err := s.service.Resolve(r.Context(), ident.Signal())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{
		State:   state.Kind.String(),
		Profile: encodeProfile(state.Profile),
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.verifiedCaller(w, r)
	if !ok {
		return
	}
	state, err := s.service.Snapshot(r.Context(), ident.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeProgress(state))
}

func (s *Server) handleReward(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.verifiedCaller(w, r)
	if !ok {
		return
	}
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.CodeInvalidArgument, "malformed reward body", err))
		return
	}
	state, err := s.service.ApplyReward(r.Context(), ident.UserID, req.Points)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeProgress(state))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.verifiedCaller(w, r)
	if !ok {
		return
	}
	state, err := s.service.RefreshWeeklyPoints(r.Context(), ident.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeProgress(state))
}

func (s *Server) handleCompleteMission(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.verifiedCaller(w, r)
	if !ok {
		return
	}
	missionID := mux.Vars(r)["id"]
	state, err := s.service.CompleteMission(r.Context(), ident.UserID, missionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// Remote confirmation is still in flight; the snapshot is optimistic.
	s.writeJSON(w, http.StatusAccepted, encodeProgress(state))
}

func encodeProgress(state progressdomain.State) progressResponse {
	missions := make([]missionBody, 0, len(state.ActiveMissions))
	for _, m := range state.ActiveMissions {
		missions = append(missions, encodeMission(m))
	}
	return progressResponse{
		EcoPoints:      state.EcoPoints,
		Level:          state.Level,
		ActiveMissions: missions,
	}
}

func encodeMission(m mission.Mission) missionBody {
	body := missionBody{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Level:       string(m.Level),
		Period:      string(m.Period),
		Status:      string(m.Status),
		Deadline:    m.Deadline,
		EcoPoints:   m.EcoPoints,
		CO2SavedKg:  m.CO2SavedKg,
	}
	for _, step := range m.Steps {
		body.Steps = append(body.Steps, encodeMission(step))
	}
	return body
}

func encodeProfile(p *profile.Profile) *profileBody {
	if p == nil {
		return nil
	}
	return &profileBody{
		ID:         p.ID,
		Email:      p.Email,
		Onboarded:  p.Onboarded,
		Locale:     p.Locale.String(),
		Location:   p.Location,
		Occupation: p.Occupation,
		Interests:  p.Interests,
	}
}
