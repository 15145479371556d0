package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mgkim1976-spec/research-based-wm/internal/types"
	"github.com/mgkim1976-spec/research-based-wm/internal/workflow"
)

// validate checks request structs; shared because validator caches struct
// metadata.
var validate = validator.New()

// RunRoutineRequest represents the request body for /routines/run.
type RunRoutineRequest struct {
	Routine  string `json:"routine" validate:"required"`
	ReportID string `json:"report_id,omitempty"`
}

// RefreshResponse represents the response for /reports/refresh.
type RefreshResponse struct {
	NewReports int `json:"new_reports"`
}

// handleRunRoutine executes one routine synchronously and returns its full
// result. Terminal routine failures (no content, unknown report) come back
// as 200 with an error-status body; transport failures map to HTTP errors.
func (s *Server) handleRunRoutine(w http.ResponseWriter, r *http.Request) {
	var req RunRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "routine is required")
		return
	}

	routine, err := types.ParseRoutineType(req.Routine)
	if err != nil {
		e := &ErrUnknownRoutine{Name: req.Routine}
		s.errorResponse(w, HTTPStatus(e), e.Error())
		return
	}

	s.logger.Info("routine run requested",
		zap.String("routine", string(routine)),
		zap.String("report_id", req.ReportID))

	var result *workflow.RoutineResult
	ctx := r.Context()
	switch routine {
	case types.RoutineMorningHybrid:
		result, err = s.runner.RunMorningHybrid(ctx, req.ReportID)
	case types.RoutineBiweeklyDeep:
		result, err = s.runner.RunBiweeklyDeep(ctx)
	case types.RoutineWeekendTheme:
		result, err = s.runner.RunWeekendTheme(ctx)
	case types.RoutineEducational:
		result, err = s.runner.RunEducational(ctx)
	}
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.cache.Put(routine, result)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleLatestRun returns the most recent cached run, optionally filtered by
// the routine query parameter.
func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("routine")

	var cached *CachedRun
	if name == "" {
		cached = s.cache.LatestAny()
	} else {
		routine, err := types.ParseRoutineType(name)
		if err != nil {
			e := &ErrUnknownRoutine{Name: name}
			s.errorResponse(w, HTTPStatus(e), e.Error())
			return
		}
		cached = s.cache.Latest(routine)
	}

	if cached == nil {
		s.errorResponse(w, http.StatusNotFound, "No completed runs yet")
		return
	}
	s.jsonResponse(w, http.StatusOK, cached)
}

// handleListReports returns the durable report history, newest first.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.reports.LoadAll(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load reports: "+err.Error())
		return
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if limit < len(reports) {
			reports = reports[:limit]
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"count":   len(reports),
		"reports": reports,
	})
}

// handleRefreshReports triggers an immediate board scan.
func (s *Server) handleRefreshReports(w http.ResponseWriter, r *http.Request) {
	inserted, err := s.runner.RefreshReports(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Refresh failed: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, RefreshResponse{NewReports: inserted})
}
