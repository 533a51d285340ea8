package validate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// minimalPDF builds a syntactically valid PDF with the given page count,
// computing xref offsets as it writes.
func minimalPDF(t *testing.T, pages int) []byte {
	t.Helper()
	var buf bytes.Buffer
	offsets := make([]int, 0, pages+2)

	buf.WriteString("%PDF-1.4\n")

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	kids := ""
	for i := 0; i < pages; i++ {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", i+3)
	}
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, pages))
	for i := 0; i < pages; i++ {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n", i+3))
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefStart)
	return buf.Bytes()
}

func TestValidateRejectsUnsupportedTypes(t *testing.T) {
	v := New(testLogger())
	for _, mediaType := range []string{"image/gif", "text/plain", "application/msword", ""} {
		verdict := v.Validate(context.Background(), domain.FileUpload{Name: "f", MediaType: mediaType})
		if verdict.Kind != domain.VerdictRejected {
			t.Errorf("media type %q: kind = %v, want rejected", mediaType, verdict.Kind)
		}
		if verdict.Reason == "" {
			t.Errorf("media type %q: expected a rejection reason", mediaType)
		}
	}
}

func TestValidateAcceptsImagesWithoutInspection(t *testing.T) {
	v := New(testLogger())
	for _, mediaType := range []string{"image/jpeg", "image/png", "image/webp"} {
		verdict := v.Validate(context.Background(), domain.FileUpload{Name: "pic", MediaType: mediaType, Data: []byte("not really an image")})
		if verdict.Kind != domain.VerdictOk {
			t.Errorf("media type %q: kind = %v, want ok", mediaType, verdict.Kind)
		}
	}
}

func TestValidatePDFWithinLimit(t *testing.T) {
	v := New(testLogger())
	verdict := v.Validate(context.Background(), domain.FileUpload{
		Name:      "short.pdf",
		MediaType: "application/pdf",
		Data:      minimalPDF(t, 2),
	})
	if verdict.Kind != domain.VerdictOk {
		t.Fatalf("kind = %v, want ok", verdict.Kind)
	}
	if verdict.PageCount != 2 {
		t.Errorf("page count = %d, want 2", verdict.PageCount)
	}
}

func TestValidatePDFOverLimitNeedsConfirmation(t *testing.T) {
	v := New(testLogger())
	verdict := v.Validate(context.Background(), domain.FileUpload{
		Name:      "long.pdf",
		MediaType: "application/pdf",
		Data:      minimalPDF(t, 3),
	})
	if verdict.Kind != domain.VerdictNeedsConfirmation {
		t.Fatalf("kind = %v, want needs-confirmation", verdict.Kind)
	}
	if verdict.PageCount != 3 {
		t.Errorf("page count = %d, want 3", verdict.PageCount)
	}
}

func TestValidateUnreadablePDFProceeds(t *testing.T) {
	v := New(testLogger())
	verdict := v.Validate(context.Background(), domain.FileUpload{
		Name:      "broken.pdf",
		MediaType: "application/pdf",
		Data:      []byte("%PDF-1.4 truncated garbage"),
	})
	if verdict.Kind != domain.VerdictOk {
		t.Errorf("kind = %v, want ok for unreadable page count", verdict.Kind)
	}
}
