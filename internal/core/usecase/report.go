package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"
)

// ReportOrchestrator turns past-paper attachments plus course context into
// a validated risk report. It writes nothing; history persistence is the
// caller's concern.
type ReportOrchestrator struct {
	invoker   ports.ModelInvoker
	prompts   ports.PromptBuilder
	parser    ports.ResponseParser
	extractor ports.TextExtractor
	workflow  ports.ModelWorkflow
	logger    *slog.Logger
}

func NewReportOrchestrator(
	invoker ports.ModelInvoker,
	prompts ports.PromptBuilder,
	parser ports.ResponseParser,
	extractor ports.TextExtractor,
	workflow ports.ModelWorkflow,
	logger *slog.Logger,
) *ReportOrchestrator {
	return &ReportOrchestrator{
		invoker:   invoker,
		prompts:   prompts,
		parser:    parser,
		extractor: extractor,
		workflow:  workflow,
		logger:    logger,
	}
}

func (uc *ReportOrchestrator) GenerateRiskReport(ctx context.Context, session *domain.Session, courseName string, syllabusPDF []byte, papers []ports.Attachment) (*domain.AnalysisReport, error) {
	if session == nil || session.UserID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "generate report", errors.New("missing session"))
	}
	if strings.TrimSpace(courseName) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate report", errors.New("course name is required"))
	}
	if len(papers) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate report", errors.New("at least one past paper is required"))
	}

	promptContext := "Course: " + courseName
	if len(syllabusPDF) > 0 {
		text, err := uc.extractor.ExtractText(ctx, syllabusPDF)
		if err != nil {
			// A broken syllabus never blocks the report; the course name
			// alone is still usable context.
			uc.logger.Warn("syllabus extraction failed, falling back to course name",
				slog.String("error", err.Error()))
		} else {
			promptContext = text
		}
	}

	raw, err := uc.invoker.Invoke(ctx, uc.workflow.Candidates, uc.prompts.ReportPrompt(promptContext), papers, uc.workflow.Options)
	if err != nil {
		return nil, err
	}
	return uc.parser.ParseReport(raw)
}
