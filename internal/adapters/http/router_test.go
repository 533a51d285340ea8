package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UmerKhan7479/SemesterSurvival/internal/auth"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"
)

type uploaderFake struct {
	result     *ports.UploadResult
	err        error
	lastFile   domain.FileUpload
	resolveArg struct {
		jobID    string
		accepted bool
	}
}

func (f *uploaderFake) Upload(_ context.Context, _ *domain.Session, file domain.FileUpload) (*ports.UploadResult, error) {
	f.lastFile = file
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *uploaderFake) Resolve(_ context.Context, _ *domain.Session, jobID string, accepted bool) (*ports.UploadResult, error) {
	f.resolveArg.jobID = jobID
	f.resolveArg.accepted = accepted
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type reportsFake struct {
	report *domain.AnalysisReport
	err    error
}

func (f *reportsFake) GenerateRiskReport(context.Context, *domain.Session, string, []byte, []ports.Attachment) (*domain.AnalysisReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type cheatSheetFake struct {
	markdown string
	err      error
}

func (f *cheatSheetFake) GenerateCheatSheet(context.Context, *domain.Session, domain.FileUpload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.markdown, nil
}

type historySvcFake struct {
	appended []*domain.HistoryEntry
	entries  []domain.HistoryEntry
	listErr  error
}

func (f *historySvcFake) Append(_ context.Context, entry *domain.HistoryEntry) {
	f.appended = append(f.appended, entry)
}

func (f *historySvcFake) List(context.Context, string) ([]domain.HistoryEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

type notesListFake struct {
	notes []domain.Note
	err   error
}

func (f *notesListFake) Insert(context.Context, *domain.Note) error { return errors.New("not implemented") }

func (f *notesListFake) ListByOwner(context.Context, string) ([]domain.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.notes, nil
}

func stubSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.ContextWithSession(r.Context(), &domain.Session{UserID: "u1"})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type fixture struct {
	uploader *uploaderFake
	reports  *reportsFake
	cheat    *cheatSheetFake
	history  *historySvcFake
	notes    *notesListFake
	handler  http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		uploader: &uploaderFake{},
		reports:  &reportsFake{report: &domain.AnalysisReport{SuccessProbability: 70}},
		cheat:    &cheatSheetFake{markdown: "# Sheet"},
		history:  &historySvcFake{},
		notes:    &notesListFake{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(f.uploader, f.reports, f.cheat, f.history, f.notes,
		auth.NewHandler(nil, nil), stubSession, nil, "api", logger)
	f.handler = router.Handler()
	return f
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if field != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
		h["Content-Type"] = []string{contentType}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUploadNoteCreated(t *testing.T) {
	f := newFixture()
	f.uploader.result = &ports.UploadResult{
		Stage: domain.StageComplete,
		Note:  &domain.Note{ID: "n1", Title: "T", Tags: []string{"a"}},
	}

	body, contentType := multipartBody(t, "file", "pic.png", "image/png", []byte("png"), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/notes", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if f.uploader.lastFile.MediaType != "image/png" {
		t.Errorf("media type = %q", f.uploader.lastFile.MediaType)
	}
}

func TestUploadNoteConfirmationRequired(t *testing.T) {
	f := newFixture()
	f.uploader.result = &ports.UploadResult{
		Stage:     domain.StageConfirmationPending,
		JobID:     "job-1",
		PageCount: 7,
	}

	body, contentType := multipartBody(t, "file", "big.pdf", "application/pdf", []byte("%PDF"), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/notes", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "confirmation_required" || resp["job_id"] != "job-1" {
		t.Errorf("resp = %v", resp)
	}
}

func TestUploadNoteErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported", domain.WrapError(domain.ErrUnsupportedFormat, "validate upload", errors.New("gif")), http.StatusUnsupportedMediaType},
		{"in flight", domain.WrapError(domain.ErrUploadInFlight, "upload note", errors.New("busy")), http.StatusConflict},
		{"cascade", &domain.AggregateFailure{Attempts: []domain.ModelAttempt{{ModelID: "m", Err: errors.New("503")}}}, http.StatusServiceUnavailable},
		{"persistence", domain.WrapError(domain.ErrPersistence, "insert note", errors.New("db")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.uploader.err = tc.err

			body, contentType := multipartBody(t, "file", "x.pdf", "application/pdf", []byte("%PDF"), nil)
			req := httptest.NewRequest(http.MethodPost, "/v1/notes", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestConfirmUpload(t *testing.T) {
	f := newFixture()
	f.uploader.result = &ports.UploadResult{
		Stage: domain.StageComplete,
		Note:  &domain.Note{ID: "n1"},
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/notes/confirm", strings.NewReader(`{"job_id":"job-1","accepted":true}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if f.uploader.resolveArg.jobID != "job-1" || !f.uploader.resolveArg.accepted {
		t.Errorf("resolve args = %+v", f.uploader.resolveArg)
	}
}

func TestConfirmUploadDeclined(t *testing.T) {
	f := newFixture()
	f.uploader.result = &ports.UploadResult{Stage: domain.StageIdle, JobID: "job-1"}

	req := httptest.NewRequest(http.MethodPost, "/v1/notes/confirm", strings.NewReader(`{"job_id":"job-1","accepted":false}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "abandoned") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRiskReportAppendsHistory(t *testing.T) {
	f := newFixture()

	body, contentType := multipartBody(t, "papers", "p1.jpg", "image/jpeg", []byte("jpg"),
		map[string]string{"course_name": "Operating Systems"})
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/risk", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(f.history.appended) != 1 {
		t.Fatalf("appended = %d, want 1", len(f.history.appended))
	}
	if f.history.appended[0].CourseName != "Operating Systems" || f.history.appended[0].UserID != "u1" {
		t.Errorf("entry = %+v", f.history.appended[0])
	}
}

func TestRiskReportFailureSkipsHistory(t *testing.T) {
	f := newFixture()
	f.reports.err = &domain.AggregateFailure{Attempts: []domain.ModelAttempt{{ModelID: "m", Err: errors.New("503")}}}

	body, contentType := multipartBody(t, "papers", "p1.jpg", "image/jpeg", []byte("jpg"),
		map[string]string{"course_name": "OS"})
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/risk", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(f.history.appended) != 0 {
		t.Error("failed report must not enter history")
	}
}

func TestCheatSheetReturnsMarkdown(t *testing.T) {
	f := newFixture()

	body, contentType := multipartBody(t, "file", "notes.pdf", "application/pdf", []byte("%PDF"), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/cheatsheet", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/markdown") {
		t.Errorf("content type = %q", got)
	}
	if rec.Body.String() != "# Sheet" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCheatSheetNoTextLayer(t *testing.T) {
	f := newFixture()
	f.cheat.err = &domain.ExtractionError{Reason: domain.ExtractNoTextLayer}

	body, contentType := multipartBody(t, "file", "scan.pdf", "application/pdf", []byte("%PDF"), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/cheatsheet", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHistoryExportIsXLSX(t *testing.T) {
	f := newFixture()
	f.history.entries = []domain.HistoryEntry{
		{ID: "h1", UserID: "u1", CourseName: "OS", Report: &domain.AnalysisReport{}},
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/history/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "analysis_history.xlsx") {
		t.Errorf("disposition = %q", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/notes", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
