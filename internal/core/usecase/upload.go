package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"
)

// PendingJobTTL bounds how long a parked confirmation may hold its
// owner's submission slot. A confirmation this stale is treated as
// abandoned on the next touch.
const PendingJobTTL = 15 * time.Minute

// UploadOrchestrator drives one note submission through validate, upload,
// analyze and persist. One submission per user at a time; a job parked on
// page-limit confirmation still counts as in flight until it is resolved
// or outlives PendingJobTTL.
type UploadOrchestrator struct {
	validator ports.FileValidator
	storage   ports.ObjectStorage
	notes     ports.NoteRepository
	invoker   ports.ModelInvoker
	prompts   ports.PromptBuilder
	parser    ports.ResponseParser
	workflow  ports.ModelWorkflow
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	busy    map[string]bool
	pending map[string]*domain.UploadJob
}

func NewUploadOrchestrator(
	validator ports.FileValidator,
	storage ports.ObjectStorage,
	notes ports.NoteRepository,
	invoker ports.ModelInvoker,
	prompts ports.PromptBuilder,
	parser ports.ResponseParser,
	workflow ports.ModelWorkflow,
	logger *slog.Logger,
) *UploadOrchestrator {
	return &UploadOrchestrator{
		validator: validator,
		storage:   storage,
		notes:     notes,
		invoker:   invoker,
		prompts:   prompts,
		parser:    parser,
		workflow:  workflow,
		logger:    logger,
		now:       time.Now,
		busy:      make(map[string]bool),
		pending:   make(map[string]*domain.UploadJob),
	}
}

func (uc *UploadOrchestrator) Upload(ctx context.Context, session *domain.Session, file domain.FileUpload) (*ports.UploadResult, error) {
	if session == nil || session.UserID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "upload note", errors.New("missing session"))
	}
	if err := uc.acquire(session.UserID); err != nil {
		return nil, err
	}

	job := &domain.UploadJob{
		ID:      uuid.NewString(),
		OwnerID: session.UserID,
		File:    file,
		Stage:   domain.StageValidating,
	}

	verdict := uc.validator.Validate(ctx, file)
	switch verdict.Kind {
	case domain.VerdictRejected:
		uc.release(session.UserID)
		job.Stage = domain.StageFailed
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "validate upload", errors.New(verdict.Reason))
	case domain.VerdictNeedsConfirmation:
		job.Stage = domain.StageConfirmationPending
		job.PageCount = verdict.PageCount
		uc.park(job)
		return &ports.UploadResult{
			Stage:     domain.StageConfirmationPending,
			JobID:     job.ID,
			PageCount: verdict.PageCount,
		}, nil
	}

	job.PageCount = verdict.PageCount
	defer uc.release(session.UserID)
	return uc.run(ctx, job)
}

// Resolve answers a parked page-limit confirmation. Declining abandons the
// job with no side effects.
func (uc *UploadOrchestrator) Resolve(ctx context.Context, session *domain.Session, jobID string, accepted bool) (*ports.UploadResult, error) {
	if session == nil || session.UserID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve upload", errors.New("missing session"))
	}

	job, err := uc.takePending(jobID, session.UserID)
	if err != nil {
		return nil, err
	}
	defer uc.release(session.UserID)

	if !accepted {
		job.Stage = domain.StageIdle
		return &ports.UploadResult{Stage: domain.StageIdle, JobID: job.ID}, nil
	}

	job.SkipAnalysis = true
	return uc.run(ctx, job)
}

// run walks the job through uploading, analyzing and persisting. The blob
// is always written before the note row that references it.
func (uc *UploadOrchestrator) run(ctx context.Context, job *domain.UploadJob) (*ports.UploadResult, error) {
	job.Stage = domain.StageUploading
	storageRef := fmt.Sprintf("%s/%s%s", job.OwnerID, uuid.NewString(), fileExt(job.File))
	publicURL, err := uc.storage.Put(ctx, storageRef, job.File.Data, job.File.MediaType)
	if err != nil {
		return uc.fail(job, "store upload", err), err
	}

	job.Stage = domain.StageAnalyzing
	extraction := uc.analyze(ctx, job)

	job.Stage = domain.StagePersisting
	note := &domain.Note{
		ID:         uuid.NewString(),
		OwnerID:    job.OwnerID,
		StorageRef: storageRef,
		PublicURL:  publicURL,
		Title:      extraction.Title,
		Tags:       extraction.Tags,
		OCRText:    extraction.OCRText,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.notes.Insert(ctx, note); err != nil {
		// The stored blob stays behind; compensation is out of scope.
		uc.logger.Warn("note insert failed, blob orphaned",
			slog.String("storage_ref", storageRef),
			slog.String("error", err.Error()))
		return uc.fail(job, "persist note", err), err
	}

	job.Stage = domain.StageComplete
	return &ports.UploadResult{Stage: domain.StageComplete, Note: note, JobID: job.ID}, nil
}

// analyze never fails the upload. A model or parse failure degrades to the
// fixed placeholder; a skipped analysis gets the skip notice.
func (uc *UploadOrchestrator) analyze(ctx context.Context, job *domain.UploadJob) domain.NoteExtraction {
	title := baseTitle(job.File.Name)

	if job.SkipAnalysis {
		return domain.NoteExtraction{
			Title:   title,
			Tags:    domain.SkipTags(),
			OCRText: domain.SkipNoticeText,
		}
	}

	raw, err := uc.invoker.Invoke(ctx, uc.workflow.Candidates, uc.prompts.NotePrompt(),
		[]ports.Attachment{{MediaType: job.File.MediaType, Data: job.File.Data}}, uc.workflow.Options)
	if err == nil {
		var ext *domain.NoteExtraction
		ext, err = uc.parser.ParseNote(raw)
		if err == nil {
			if ext.Title == "" {
				ext.Title = title
			}
			return *ext
		}
	}

	uc.logger.Warn("note analysis failed, using placeholder",
		slog.String("job_id", job.ID),
		slog.String("error", err.Error()))
	return domain.NoteExtraction{
		Title:   title,
		Tags:    []string{},
		OCRText: domain.AnalysisFailedText,
	}
}

func (uc *UploadOrchestrator) fail(job *domain.UploadJob, op string, err error) *ports.UploadResult {
	job.Stage = domain.StageFailed
	job.LastError = fmt.Errorf("%s: %w", op, err)
	return &ports.UploadResult{Stage: domain.StageFailed, JobID: job.ID}
}

func (uc *UploadOrchestrator) acquire(userID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.sweepExpiredLocked()
	if uc.busy[userID] {
		return domain.WrapError(domain.ErrUploadInFlight, "upload note", errors.New("previous upload still running"))
	}
	uc.busy[userID] = true
	return nil
}

func (uc *UploadOrchestrator) release(userID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.busy, userID)
}

func (uc *UploadOrchestrator) park(job *domain.UploadJob) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	job.ParkedAt = uc.now()
	uc.pending[job.ID] = job
}

func (uc *UploadOrchestrator) takePending(jobID, userID string) (*domain.UploadJob, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.sweepExpiredLocked()
	job, ok := uc.pending[jobID]
	if !ok {
		return nil, domain.WrapError(domain.ErrJobNotFound, "resolve upload", errors.New("no pending job "+jobID))
	}
	if job.OwnerID != userID {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve upload", errors.New("job belongs to another user"))
	}
	delete(uc.pending, jobID)
	return job, nil
}

// sweepExpiredLocked abandons parked jobs whose confirmation never came,
// freeing their owners' submission slots. Caller holds uc.mu.
func (uc *UploadOrchestrator) sweepExpiredLocked() {
	cutoff := uc.now().Add(-PendingJobTTL)
	for id, job := range uc.pending {
		if job.ParkedAt.After(cutoff) {
			continue
		}
		job.Stage = domain.StageIdle
		delete(uc.pending, id)
		delete(uc.busy, job.OwnerID)
		uc.logger.Info("stale pending upload abandoned",
			slog.String("job_id", id),
			slog.String("owner_id", job.OwnerID))
	}
}

func fileExt(file domain.FileUpload) string {
	if ext := filepath.Ext(file.Name); ext != "" {
		return ext
	}
	switch file.MediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}

func baseTitle(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "Untitled Note"
	}
	return base
}
