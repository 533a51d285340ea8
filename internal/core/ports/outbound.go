package ports

import (
	"context"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

// FileValidator accepts or rejects a file by declared media type and, for
// PDFs, page count. It performs no network or storage I/O.
type FileValidator interface {
	Validate(ctx context.Context, file domain.FileUpload) domain.Verdict
}

// TextExtractor converts PDF bytes into bounded plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Attachment is a binary prompt part (image or PDF) sent alongside the
// instruction text. Order of parts matters to the provider.
type Attachment struct {
	MediaType string
	Data      []byte
}

// GenerationOptions apply uniformly to every candidate of one invocation.
type GenerationOptions struct {
	Temperature     float64
	MaxOutputTokens int
}

// ModelInvoker runs an ordered candidate list against the generation
// provider until one succeeds, returning the first success verbatim.
type ModelInvoker interface {
	Invoke(ctx context.Context, candidates []string, instruction string, attachments []Attachment, opts GenerationOptions) (string, error)
}

// ModelWorkflow bundles the fixed candidate list and options one workflow
// uses for every invocation.
type ModelWorkflow struct {
	Candidates []string
	Options    GenerationOptions
}

// PromptBuilder assembles the bounded instruction text per workflow.
type PromptBuilder interface {
	ReportPrompt(context string) string
	NotePrompt() string
	CheatSheetPrompt(extractedText string) string
}

// ResponseParser turns raw provider output into validated domain objects.
type ResponseParser interface {
	ParseReport(raw string) (*domain.AnalysisReport, error)
	ParseNote(raw string) (*domain.NoteExtraction, error)
}

// ObjectStorage stores note blobs and yields their public reference.
type ObjectStorage interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, paths []string) error
}

// NoteRepository persists and reads note records.
type NoteRepository interface {
	Insert(ctx context.Context, note *domain.Note) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Note, error)
}

// HistoryRepository persists and reads analysis history.
type HistoryRepository interface {
	Insert(ctx context.Context, entry *domain.HistoryEntry) error
	ListByUser(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
}

// HistoryQueue carries best-effort durable-write requests for history
// entries. Publish failures are logged by callers, never surfaced.
type HistoryQueue interface {
	PublishHistoryEntry(ctx context.Context, entry *domain.HistoryEntry) error
	SubscribeHistoryEntries(ctx context.Context, handler func(context.Context, *domain.HistoryEntry) error) error
}

// UserStore persists accounts for the auth surface.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPw string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}
