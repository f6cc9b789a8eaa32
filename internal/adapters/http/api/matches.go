package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/scoreboard/internal/domain/match"
)

// MatchesHandler serves match and scoring routes.
type MatchesHandler struct {
	deps Dependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type createRequest struct {
	Name  string `json:"name"`
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
}

type startRequest struct {
	Unlock bool `json:"unlock"`
}

type pointsRequest struct {
	Team   int `json:"team"`
	Points int `json:"points"`
}

type endRequest struct {
	Lock bool `json:"lock"`
}

// HandleList handles GET /matches.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.List(r.Context()))
}

// HandleCreate handles POST /matches.
func (h *MatchesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.deps.NewMatch(r.Context(), req.Name, req.Team1, req.Team2)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// HandleGet handles GET /matches/{name}.
func (h *MatchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleStart handles POST /matches/{name}/start.
func (h *MatchesHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.deps.StartScoring(r.Context(), chi.URLParam(r, "name"), req.Unlock)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleLock handles PUT /matches/{name}/lock.
func (h *MatchesHandler) HandleLock(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, true)
}

// HandleUnlock handles DELETE /matches/{name}/lock.
func (h *MatchesHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, false)
}

func (h *MatchesHandler) setLocked(w http.ResponseWriter, r *http.Request, locked bool) {
	v, err := h.deps.SetLocked(r.Context(), chi.URLParam(r, "name"), locked)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleCurrent handles GET /current.
func (h *MatchesHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleAddPoints handles POST /current/points.
func (h *MatchesHandler) HandleAddPoints(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.deps.AddPoints(r.Context(), match.Team(req.Team), req.Points)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleEnd handles POST /current/end.
func (h *MatchesHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.deps.EndMatch(r.Context(), req.Lock)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleResults handles GET /results as plain text, one match per line.
func (h *MatchesHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	lines := h.deps.Results(r.Context())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if len(lines) > 0 {
		_, _ = w.Write([]byte(strings.Join(lines, "\n") + "\n"))
	}
}

// HandleSave handles POST /save.
func (h *MatchesHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Save(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
