package usecase

import (
	"context"
	"errors"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"
)

// CheatSheetOrchestrator condenses a text-based PDF into Markdown. The
// model's output passes through verbatim, no JSON parsing.
type CheatSheetOrchestrator struct {
	extractor ports.TextExtractor
	invoker   ports.ModelInvoker
	prompts   ports.PromptBuilder
	workflow  ports.ModelWorkflow
}

func NewCheatSheetOrchestrator(
	extractor ports.TextExtractor,
	invoker ports.ModelInvoker,
	prompts ports.PromptBuilder,
	workflow ports.ModelWorkflow,
) *CheatSheetOrchestrator {
	return &CheatSheetOrchestrator{
		extractor: extractor,
		invoker:   invoker,
		prompts:   prompts,
		workflow:  workflow,
	}
}

func (uc *CheatSheetOrchestrator) GenerateCheatSheet(ctx context.Context, session *domain.Session, file domain.FileUpload) (string, error) {
	if session == nil || session.UserID == "" {
		return "", domain.WrapError(domain.ErrUnauthorized, "generate cheat sheet", errors.New("missing session"))
	}
	if file.MediaType != "application/pdf" {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "generate cheat sheet", errors.New("cheat sheets require a PDF"))
	}

	text, err := uc.extractor.ExtractText(ctx, file.Data)
	if err != nil {
		return "", err
	}

	return uc.invoker.Invoke(ctx, uc.workflow.Candidates, uc.prompts.CheatSheetPrompt(text), nil, uc.workflow.Options)
}
