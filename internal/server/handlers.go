package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/claude/pocketlifts/internal/draft"
	"github.com/claude/pocketlifts/internal/export"
	"github.com/claude/pocketlifts/internal/history"
	"github.com/claude/pocketlifts/internal/importer"
	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/stats"
	"github.com/claude/pocketlifts/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds JSON and import request bodies.
const maxBodyBytes = 8 << 20

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

type stateResponse struct {
	Unit      models.Unit       `json:"unit"`
	Movements []models.Movement `json:"movements"`
	Workouts  []models.Workout  `json:"workouts"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st := s.tracker.State()
	writeJSON(w, http.StatusOK, stateResponse{
		Unit:      st.Unit,
		Movements: nonNil(st.Movements),
		Workouts:  nonNil(history.ByDateDesc(st.Workouts)),
	})
}

func (s *Server) handleChangeUnit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unit string `json:"unit"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	u, err := models.ParseUnit(req.Unit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.tracker.ChangeUnit(r.Context(), u); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.Unit{"unit": u})
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Draft())
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var patch tracker.DraftPatch
	if !s.decode(w, r, &patch) {
		return
	}
	view, err := s.tracker.UpdateDraft(patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSelectMovement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MovementID string `json:"movement_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	view, err := s.tracker.SelectMovement(req.MovementID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleNudge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field     string `json:"field"`
		Direction int    `json:"direction"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Direction != 1 && req.Direction != -1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "direction must be 1 or -1"})
		return
	}
	var view draft.View
	switch req.Field {
	case "weight":
		view = s.tracker.Nudge(req.Direction, 0)
	case "reps":
		view = s.tracker.Nudge(0, req.Direction)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "field must be weight or reps"})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.tracker.AddSet()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleAddWave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
		draft.WaveWeights
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	sets, err := s.tracker.AddWave(req.Count, req.WaveWeights)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sets)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	wo, err := s.tracker.CommitDraft(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wo)
}

func (s *Server) handleResetDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.ResetDraft())
}

func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.tracker.Movements()))
}

func (s *Server) handleAddMovement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		BodyPart string `json:"bodypart"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	m, err := s.tracker.AddMovement(r.Context(), req.Name, req.BodyPart)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleAddMovements(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	added, err := s.tracker.AddMovements(r.Context(), req.Names)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"added":     len(added),
		"movements": nonNil(added),
	})
}

func (s *Server) handleDeleteMovement(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteMovement(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	for _, d := range []string{start, end} {
		if d == "" {
			continue
		}
		if _, err := models.ParseDate(d); err != nil {
			s.writeError(w, err)
			return
		}
	}
	workouts, err := s.tracker.QueryWorkouts(r.Context(), start, end, q.Get("movement"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteWorkout(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLastUsed(w http.ResponseWriter, r *http.Request) {
	movement, ok := requireParam(w, r, "movement")
	if !ok {
		return
	}
	last, err := s.tracker.GetLastUsed(r.Context(), movement)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if last == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no history for movement"})
		return
	}
	writeJSON(w, http.StatusOK, last)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	movement, ok := requireParam(w, r, "movement")
	if !ok {
		return
	}
	sug, err := s.tracker.SuggestWeight(r.Context(), movement)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sug)
}

func (s *Server) handleEstimate1RM(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	weight, err := strconv.ParseFloat(q.Get("weight"), 64)
	if err != nil || weight < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight must be a non-negative number"})
		return
	}
	reps, err := strconv.Atoi(q.Get("reps"))
	if err != nil || reps < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps must be a non-negative integer"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"weight": weight,
		"reps":   reps,
		"e1rm":   stats.Estimate1RM(weight, reps),
	})
}

func (s *Server) handleMovementSummary(w http.ResponseWriter, r *http.Request) {
	movement, ok := requireParam(w, r, "movement")
	if !ok {
		return
	}
	sum, err := s.tracker.GetMovementSummary(r.Context(), movement)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleMovementSummaries(w http.ResponseWriter, r *http.Request) {
	sums, err := s.tracker.GetMovementSummaries(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sums)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	if err := s.tracker.ExportCSV(w); err != nil {
		s.log.Error("csv export failed", "error", err)
	}
}

func (s *Server) handleImportProposal(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "upload"
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	p, err := s.importer.Propose(r.Context(), source, body)
	if errors.Is(err, importer.ErrSuperseded) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleImportApply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source     string               `json:"source"`
		Candidates []importer.Candidate `json:"candidates"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.importer.Apply(r.Context(), req.Source, req.Candidates)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.importer.Logs(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(logs))
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case models.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateMovement):
		status = http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	default:
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func requireParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": name + " parameter required"})
		return "", false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
