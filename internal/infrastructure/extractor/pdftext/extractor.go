package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

const (
	// MaxPages caps extraction regardless of document length. Pages past
	// the cap are silently dropped.
	MaxPages = 30

	// MinUsableChars is the threshold under which a document counts as
	// having no text layer (scanned image-only PDFs mostly).
	MinUsableChars = 50
)

// Extractor pulls the text layer out of PDF bytes, page by page, with a
// page marker before each page so downstream prompts keep positional
// context.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

func (e *Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &domain.ExtractionError{Reason: domain.ExtractMalformed, Err: err}
	}

	pages := pageWindow(reader.NumPage())

	collected := make([]extractedPage, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		// A null or unreadable page keeps its marker so downstream
		// prompts see the true page positions; only its text is lost.
		page := reader.Page(i)
		if page.V.IsNull() {
			collected = append(collected, extractedPage{number: i})
			continue
		}
		fragments, err := pageFragments(page)
		if err != nil {
			e.logger.Warn("pdf page unreadable, keeping empty page", slog.Int("page", i), slog.String("error", err.Error()))
			collected = append(collected, extractedPage{number: i})
			continue
		}
		collected = append(collected, extractedPage{number: i, fragments: fragments})
	}

	return assemble(collected)
}

type extractedPage struct {
	number    int
	fragments []string
}

// pageWindow clips the number of pages to extract at the cap.
func pageWindow(numPages int) int {
	if numPages > MaxPages {
		return MaxPages
	}
	return numPages
}

// assemble renders extracted pages into the marker-delimited output and
// applies the usable-text floor.
func assemble(pages []extractedPage) (string, error) {
	var out strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&out, "\n--- Page %d ---\n", p.number)
		out.WriteString(strings.Join(p.fragments, " "))
	}

	text := strings.TrimSpace(out.String())
	if len(text) < MinUsableChars {
		return "", &domain.ExtractionError{Reason: domain.ExtractNoTextLayer}
	}
	return text, nil
}

// pageFragments recovers per-fragment text. Content panics on some broken
// pages inside the library, so the recover keeps one bad page from killing
// the whole document.
func pageFragments(page pdf.Page) (fragments []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page content: %v", r)
		}
	}()
	for _, item := range page.Content().Text {
		if item.S != "" {
			fragments = append(fragments, item.S)
		}
	}
	return fragments, nil
}
