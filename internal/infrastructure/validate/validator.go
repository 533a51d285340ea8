package validate

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

// InlinePageLimit is the largest PDF that goes straight to analysis.
// Anything longer needs the user to accept a skipped extraction first.
const InlinePageLimit = 2

var acceptedMediaTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// Validator gatekeeps uploads by declared media type and PDF page count.
// It never touches the network or object storage.
type Validator struct {
	logger    *slog.Logger
	pageLimit int
}

func New(logger *slog.Logger) *Validator {
	return &Validator{logger: logger, pageLimit: InlinePageLimit}
}

// Validate accepts images outright, counts pages for PDFs, and parks PDFs
// over the page limit behind a confirmation verdict. An unreadable page
// count is a soft failure: the file proceeds and extraction deals with it.
func (v *Validator) Validate(ctx context.Context, file domain.FileUpload) domain.Verdict {
	if _, ok := acceptedMediaTypes[file.MediaType]; !ok {
		return domain.Verdict{
			Kind:   domain.VerdictRejected,
			Reason: "unsupported file type: " + file.MediaType,
		}
	}
	if file.MediaType != "application/pdf" {
		return domain.Verdict{Kind: domain.VerdictOk}
	}

	pages, err := api.PageCount(bytes.NewReader(file.Data), model.NewDefaultConfiguration())
	if err != nil {
		v.logger.Warn("pdf page count unreadable, proceeding without limit check",
			slog.String("file", file.Name),
			slog.String("error", err.Error()))
		return domain.Verdict{Kind: domain.VerdictOk}
	}
	if pages > v.pageLimit {
		return domain.Verdict{Kind: domain.VerdictNeedsConfirmation, PageCount: pages}
	}
	return domain.Verdict{Kind: domain.VerdictOk, PageCount: pages}
}
