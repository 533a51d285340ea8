package httpadapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/UmerKhan7479/SemesterSurvival/internal/auth"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"
	"github.com/UmerKhan7479/SemesterSurvival/internal/export"
	"github.com/UmerKhan7479/SemesterSurvival/internal/observability/metrics"
)

const maxUploadBytes = 32 << 20

type Router struct {
	uploader   ports.NoteUploader
	reports    ports.ReportGenerator
	cheatsheet ports.CheatSheetGenerator
	history    ports.HistoryService
	notes      ports.NoteRepository
	authH      *auth.Handler
	sessionMW  func(http.Handler) http.Handler
	metrics    *metrics.HTTPServerMetrics
	service    string
	logger     *slog.Logger
}

func NewRouter(
	uploader ports.NoteUploader,
	reports ports.ReportGenerator,
	cheatsheet ports.CheatSheetGenerator,
	history ports.HistoryService,
	notes ports.NoteRepository,
	authH *auth.Handler,
	sessionMW func(http.Handler) http.Handler,
	m *metrics.HTTPServerMetrics,
	service string,
	logger *slog.Logger,
) *Router {
	return &Router{
		uploader:   uploader,
		reports:    reports,
		cheatsheet: cheatsheet,
		history:    history,
		notes:      notes,
		authH:      authH,
		sessionMW:  sessionMW,
		metrics:    m,
		service:    service,
		logger:     logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)

	mux.HandleFunc("/v1/auth/register", methodGuard(http.MethodPost, rt.authH.Register))
	mux.HandleFunc("/v1/auth/login", methodGuard(http.MethodPost, rt.authH.Login))
	mux.HandleFunc("/v1/auth/logout", methodGuard(http.MethodPost, rt.authH.Logout))

	authed := http.NewServeMux()
	authed.HandleFunc("/v1/notes", rt.notesHandler)
	authed.HandleFunc("/v1/notes/confirm", methodGuard(http.MethodPost, rt.confirmUpload))
	authed.HandleFunc("/v1/reports/risk", methodGuard(http.MethodPost, rt.riskReport))
	authed.HandleFunc("/v1/reports/cheatsheet", methodGuard(http.MethodPost, rt.cheatSheet))
	authed.HandleFunc("/v1/history", methodGuard(http.MethodGet, rt.listHistory))
	authed.HandleFunc("/v1/history/export", methodGuard(http.MethodGet, rt.exportHistory))
	protected := rt.sessionMW(authed)
	mux.Handle("/v1/notes", protected)
	mux.Handle("/v1/notes/", protected)
	mux.Handle("/v1/reports/", protected)
	mux.Handle("/v1/history", protected)
	mux.Handle("/v1/history/", protected)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(rt.logger, handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) notesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadNote(w, r)
	case http.MethodGet:
		rt.listNotes(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadNote(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	file, ok := readMultipartFile(w, r, "file")
	if !ok {
		return
	}

	result, err := rt.uploader.Upload(r.Context(), session, file)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.writeUploadResult(w, result)
}

func (rt *Router) confirmUpload(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	var req struct {
		JobID    string `json:"job_id"`
		Accepted bool   `json:"accepted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "job_id is required"})
		return
	}

	result, err := rt.uploader.Resolve(r.Context(), session, req.JobID, req.Accepted)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if result.Stage == domain.StageIdle {
		writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
		return
	}
	rt.writeUploadResult(w, result)
}

func (rt *Router) writeUploadResult(w http.ResponseWriter, result *ports.UploadResult) {
	if rt.metrics != nil {
		rt.metrics.RecordUploadStage(rt.service, string(result.Stage))
		if result.Note != nil && result.Note.OCRText == domain.AnalysisFailedText {
			rt.metrics.RecordAnalysisFallback(rt.service)
		}
	}
	switch result.Stage {
	case domain.StageConfirmationPending:
		writeJSON(w, http.StatusAccepted, map[string]any{
			"status":     "confirmation_required",
			"job_id":     result.JobID,
			"page_count": result.PageCount,
		})
	case domain.StageComplete:
		writeJSON(w, http.StatusCreated, result.Note)
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
	}
}

func (rt *Router) listNotes(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	notes, err := rt.notes.ListByOwner(r.Context(), session.UserID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (rt *Router) riskReport(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	courseName := r.FormValue("course_name")

	var syllabus []byte
	if f, _, err := r.FormFile("syllabus"); err == nil {
		syllabus, err = io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable syllabus"})
			return
		}
	}

	papers, ok := readAttachments(w, r.MultipartForm.File["papers"])
	if !ok {
		return
	}

	report, err := rt.reports.GenerateRiskReport(r.Context(), session, courseName, syllabus, papers)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	rt.history.Append(r.Context(), &domain.HistoryEntry{
		UserID:     session.UserID,
		CourseName: courseName,
		Report:     report,
	})
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) cheatSheet(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	file, ok := readMultipartFile(w, r, "file")
	if !ok {
		return
	}

	markdown, err := rt.cheatsheet.GenerateCheatSheet(r.Context(), session, file)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markdown))
}

func (rt *Router) listHistory(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	entries, err := rt.history.List(r.Context(), session.UserID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (rt *Router) exportHistory(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	entries, err := rt.history.List(r.Context(), session.UserID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	data, err := export.HistoryXLSX(entries)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="analysis_history.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.logger.Error("request_failed",
			slog.String("request_id", requestIDFromContext(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func readMultipartFile(w http.ResponseWriter, r *http.Request, field string) (domain.FileUpload, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return domain.FileUpload{}, false
	}
	f, header, err := r.FormFile(field)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field '" + field + "' is required"})
		return domain.FileUpload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable file"})
		return domain.FileUpload{}, false
	}
	return domain.FileUpload{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Data:      data,
	}, true
}

func readAttachments(w http.ResponseWriter, headers []*multipart.FileHeader) ([]ports.Attachment, bool) {
	papers := make([]ports.Attachment, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable paper " + h.Filename})
			return nil, false
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable paper " + h.Filename})
			return nil, false
		}
		papers = append(papers, ports.Attachment{
			MediaType: h.Header.Get("Content-Type"),
			Data:      data,
		})
	}
	return papers, true
}

func methodGuard(method string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		handler(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
