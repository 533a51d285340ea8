package ports

import (
	"context"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

// UploadResult is what the upload workflow hands back to the caller: either
// a completed note, or a parked job awaiting user consent.
type UploadResult struct {
	Stage     domain.UploadStage
	Note      *domain.Note
	JobID     string
	PageCount int
}

// NoteUploader is the inbound contract for the "save a note" workflow.
// Resolve answers a pending page-limit confirmation.
type NoteUploader interface {
	Upload(ctx context.Context, session *domain.Session, file domain.FileUpload) (*UploadResult, error)
	Resolve(ctx context.Context, session *domain.Session, jobID string, accepted bool) (*UploadResult, error)
}

// ReportGenerator produces a risk report from past-paper attachments and
// course context. No storage writes happen here.
type ReportGenerator interface {
	GenerateRiskReport(ctx context.Context, session *domain.Session, courseName string, syllabusPDF []byte, papers []Attachment) (*domain.AnalysisReport, error)
}

// CheatSheetGenerator condenses a text-based PDF into Markdown.
type CheatSheetGenerator interface {
	GenerateCheatSheet(ctx context.Context, session *domain.Session, file domain.FileUpload) (string, error)
}

// HistoryService is the optimistic-then-persist view over analysis history.
type HistoryService interface {
	Append(ctx context.Context, entry *domain.HistoryEntry)
	List(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
}

// HistoryPersister is the worker-side contract that performs the durable
// half of a history append.
type HistoryPersister interface {
	Persist(ctx context.Context, entry *domain.HistoryEntry) error
}
