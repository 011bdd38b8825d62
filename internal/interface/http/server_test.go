package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/application/command"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/application/query"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notice"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type stubSource struct {
	regulars []schedule.RawRecord
}

func (s *stubSource) RegularClasses(ctx context.Context, grade shared.Grade, semester shared.Semester) ([]schedule.RawRecord, error) {
	return s.regulars, nil
}

func (s *stubSource) SpecialLectures(ctx context.Context, level shared.Level, group shared.GroupLevel, semester shared.Semester, window schedule.DateWindow) ([]schedule.RawRecord, error) {
	return nil, nil
}

func (s *stubSource) PunctualEvents(ctx context.Context, window schedule.DateWindow) ([]schedule.RawRecord, error) {
	return nil, nil
}

func (s *stubSource) Holidays(ctx context.Context, window schedule.DateWindow) ([]schedule.RawRecord, error) {
	return nil, nil
}

type stubChangeStore struct {
	events []schedule.RawRecord
}

func (s *stubChangeStore) InsertEvent(ctx context.Context, rec schedule.RawRecord) error {
	s.events = append(s.events, rec)
	return nil
}

func (s *stubChangeStore) InsertSpecialLecture(ctx context.Context, rec schedule.RawRecord) error {
	return nil
}

type memNoticeRepo struct {
	notices map[notice.NoticeID]*notice.Notice
}

func newMemNoticeRepo() *memNoticeRepo {
	return &memNoticeRepo{notices: make(map[notice.NoticeID]*notice.Notice)}
}

func (r *memNoticeRepo) Save(ctx context.Context, n *notice.Notice) error {
	cp := *n
	r.notices[n.ID] = &cp
	return nil
}

func (r *memNoticeRepo) GetByID(ctx context.Context, id notice.NoticeID) (*notice.Notice, error) {
	n, ok := r.notices[id]
	if !ok {
		return nil, shared.ErrNoticeNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *memNoticeRepo) List(ctx context.Context, filter notice.ListFilter) ([]*notice.Notice, error) {
	var out []*notice.Notice
	for _, n := range r.notices {
		if filter.PublishedOnly && !n.IsPublished() {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *memNoticeRepo) Delete(ctx context.Context, id notice.NoticeID) error {
	delete(r.notices, id)
	return nil
}

func intPtr(v int) *int { return &v }

func newTestServer(t *testing.T) (*Server, *stubChangeStore, *memNoticeRepo) {
	t.Helper()

	source := &stubSource{regulars: []schedule.RawRecord{{
		ID:          "reg-1",
		Kind:        "regular",
		Subject:     "Japanese Grammar",
		Grade:       2,
		Weekday:     intPtr(1),
		StartPeriod: 1,
		EndPeriod:   2,
	}}}
	store := &stubChangeStore{}
	noticeRepo := newMemNoticeRepo()

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0

	server := NewServer(cfg, Dependencies{
		WeeklyTimetable: query.NewGetWeeklyTimetableHandler(source, nil, nil),
		ListNotices:     query.NewListNoticesHandler(noticeRepo, nil),
		Notices:         command.NewNoticeHandler(noticeRepo, nil, nil),
		ScheduleChanges: command.NewReportScheduleChangeHandler(store, nil, nil, nil),
	})
	return server, store, noticeRepo
}

func do(server *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestServer_Health(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := do(server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
}

func TestServer_GetWeeklyTimetable(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := do(server, http.MethodGet, "/api/v1/timetable/week?grade=2&semester=2024-summer&week=2024-06-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := struct {
		Success bool            `json:"success"`
		Data    schedule.Result `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Entries, 1)
	assert.Equal(t, "reg-1", resp.Data.Entries[0].Occurrence.ID)
}

func TestServer_GetWeeklyTimetable_BadWeek(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := do(server, http.MethodGet, "/api/v1/timetable/week?week=June+5th", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetWeeklyTimetable_BadGrade(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := do(server, http.MethodGet, "/api/v1/timetable/week?grade=9", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Code)
}

func TestServer_ReportScheduleChange(t *testing.T) {
	server, store, _ := newTestServer(t)

	body, _ := json.Marshal(reportScheduleChangeRequest{
		Type:        "cancel",
		Subject:     "Japanese Grammar",
		Date:        "2024-06-03",
		StartPeriod: 1,
		EndPeriod:   2,
		Grade:       2,
	})
	rec := do(server, http.MethodPost, "/api/v1/schedule/changes", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.events, 1)
}

func TestServer_ReportScheduleChange_UnknownType(t *testing.T) {
	server, store, _ := newTestServer(t)

	body, _ := json.Marshal(reportScheduleChangeRequest{Type: "postpone", Date: "2024-06-03"})
	rec := do(server, http.MethodPost, "/api/v1/schedule/changes", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.events)
}

func TestServer_ReportScheduleChange_InvalidJSON(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := do(server, http.MethodPost, "/api/v1/schedule/changes", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_NoticeLifecycle(t *testing.T) {
	server, _, _ := newTestServer(t)

	body, _ := json.Marshal(createNoticeRequest{
		Title:    "Midterm week",
		Body:     "Regular classes pause during midterms.",
		Grade:    2,
		AuthorID: "admin-1",
	})
	rec := do(server, http.MethodPost, "/api/v1/notices", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := struct {
		Data notice.Notice `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Data.ID.String()
	require.NotEmpty(t, id)

	// Drafts are hidden from the default listing.
	rec = do(server, http.MethodGet, "/api/v1/notices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := struct {
		Data []notice.Notice `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed.Data)

	rec = do(server, http.MethodPost, "/api/v1/notices/"+id+"/publish", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Publishing twice conflicts.
	rec = do(server, http.MethodPost, "/api/v1/notices/"+id+"/publish", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(server, http.MethodGet, "/api/v1/notices", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed.Data, 1)

	rec = do(server, http.MethodDelete, "/api/v1/notices/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_PublishMissingNotice(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := do(server, http.MethodPost, "/api/v1/notices/no-such/publish", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_UnconfiguredHandler(t *testing.T) {
	server := NewServer(DefaultConfig(), Dependencies{})

	rec := do(server, http.MethodGet, "/api/v1/timetable/week", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
