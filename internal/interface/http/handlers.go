package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/application/command"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/application/query"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notice"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "GSC Portal API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":    "/health",
			"timetable": "/api/v1/timetable/week",
			"notices":   "/api/v1/notices",
			"changes":   "/api/v1/schedule/changes",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"uptime": s.Uptime().String(),
		})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// TIMETABLE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetWeeklyTimetable handles GET /api/v1/timetable/week.
//
// Query parameters: grade, level, group, foreigner (true/false), semester
// (YYYY-season), week (any date inside the requested week, 2006-01-02).
func (s *Server) handleGetWeeklyTimetable(w http.ResponseWriter, r *http.Request) {
	if s.deps.WeeklyTimetable == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Timetable handler not configured")
		return
	}

	q := query.GetWeeklyTimetableQuery{
		Grade:          getQueryParamInt(r, "grade", 0),
		Level:          r.URL.Query().Get("level"),
		GroupLevel:     r.URL.Query().Get("group"),
		ForeignerTrack: getQueryParamBoolPtr(r, "foreigner"),
		Semester:       r.URL.Query().Get("semester"),
	}
	if week := r.URL.Query().Get("week"); week != "" {
		anchor, err := timeutil.ParseDate(week)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_week", "week must be formatted 2006-01-02")
			return
		}
		q.WeekAnchor = anchor
	}

	result, err := s.deps.WeeklyTimetable.Execute(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTICE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListNotices handles GET /api/v1/notices.
func (s *Server) handleListNotices(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListNotices == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notice handler not configured")
		return
	}

	notices, err := s.deps.ListNotices.Execute(r.Context(), query.ListNoticesQuery{
		Grade:         getQueryParamInt(r, "grade", 0),
		IncludeDrafts: r.URL.Query().Get("include_drafts") == "true",
		Limit:         getQueryParamInt(r, "limit", 0),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notices)
}

// createNoticeRequest is the POST /api/v1/notices body.
type createNoticeRequest struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	Grade          int    `json:"grade,omitempty"`
	Level          string `json:"level,omitempty"`
	GroupLevel     string `json:"group_level,omitempty"`
	ForeignerTrack *bool  `json:"foreigner_track,omitempty"`
	Pinned         bool   `json:"pinned,omitempty"`
	AuthorID       string `json:"author_id"`
}

// handleCreateNotice handles POST /api/v1/notices.
func (s *Server) handleCreateNotice(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notices == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notice handler not configured")
		return
	}

	var req createNoticeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	grade, err := shared.NewGrade(req.Grade)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	created, err := s.deps.Notices.Create(r.Context(), command.CreateNoticeCommand{
		Title: req.Title,
		Body:  req.Body,
		Audience: notice.Audience{
			Grade:          grade,
			Level:          shared.NewLevel(req.Level),
			GroupLevel:     shared.GroupLevel(strings.TrimSpace(req.GroupLevel)),
			ForeignerTrack: req.ForeignerTrack,
		},
		Pinned:   req.Pinned,
		AuthorID: req.AuthorID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handlePublishNotice handles POST /api/v1/notices/{id}/publish.
func (s *Server) handlePublishNotice(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notices == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notice handler not configured")
		return
	}

	published, err := s.deps.Notices.Publish(r.Context(), command.PublishNoticeCommand{
		NoticeID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, published)
}

// handlePinNotice handles POST /api/v1/notices/{id}/pin. An empty body pins;
// {"pinned": false} unpins.
func (s *Server) handlePinNotice(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notices == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notice handler not configured")
		return
	}

	req := struct {
		Pinned *bool `json:"pinned"`
	}{}
	body, err := io.ReadAll(r.Body)
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
			return
		}
	}
	pinned := req.Pinned == nil || *req.Pinned

	updated, err := s.deps.Notices.Pin(r.Context(), command.PinNoticeCommand{
		NoticeID: r.PathValue("id"),
		Pinned:   pinned,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteNotice handles DELETE /api/v1/notices/{id}.
func (s *Server) handleDeleteNotice(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notices == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notice handler not configured")
		return
	}

	if err := s.deps.Notices.Delete(r.Context(), command.DeleteNoticeCommand{
		NoticeID: r.PathValue("id"),
	}); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE CHANGE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// reportScheduleChangeRequest is the POST /api/v1/schedule/changes body.
type reportScheduleChangeRequest struct {
	Type            string `json:"type"` // cancel, makeup, event, special
	Subject         string `json:"subject,omitempty"`
	Date            string `json:"date,omitempty"`
	Weekday         *int   `json:"weekday,omitempty"`
	StartPeriod     int    `json:"start_period"`
	EndPeriod       int    `json:"end_period"`
	Grade           int    `json:"grade,omitempty"`
	Level           string `json:"level,omitempty"`
	GroupLevel      string `json:"group_level,omitempty"`
	ForeignerTrack  *bool  `json:"foreigner_track,omitempty"`
	Semester        string `json:"semester,omitempty"`
	LinkedRegularID string `json:"linked_regular_id,omitempty"`
}

// handleReportScheduleChange handles POST /api/v1/schedule/changes.
func (s *Server) handleReportScheduleChange(w http.ResponseWriter, r *http.Request) {
	if s.deps.ScheduleChanges == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Schedule change handler not configured")
		return
	}

	var req reportScheduleChangeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.ScheduleChanges.Execute(r.Context(), command.ReportScheduleChangeCommand{
		Type:            command.ChangeType(req.Type),
		Subject:         req.Subject,
		Date:            req.Date,
		Weekday:         req.Weekday,
		StartPeriod:     req.StartPeriod,
		EndPeriod:       req.EndPeriod,
		Grade:           req.Grade,
		Level:           req.Level,
		GroupLevel:      req.GroupLevel,
		ForeignerTrack:  req.ForeignerTrack,
		Semester:        req.Semester,
		LinkedRegularID: req.LinkedRegularID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED HANDLER HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes a JSON request body, writing a 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return false
	}
	return true
}

// writeDomainError maps the domain error taxonomy onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, shared.ErrAlreadyExists):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	case shared.IsExternalService(err):
		writeJSONError(w, http.StatusBadGateway, "upstream_error", "A backing service failed")
		s.logger.Error("upstream failure",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		s.logger.Error("unhandled error",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
	}
}

// getQueryParamBoolPtr reads a tri-state boolean parameter: absent means
// nil, anything else parses as true/false.
func getQueryParamBoolPtr(r *http.Request, key string) *bool {
	value := strings.ToLower(r.URL.Query().Get(key))
	if value == "" {
		return nil
	}
	b := value == "true" || value == "1" || value == "yes"
	return &b
}
