package domain

import "time"

// Note is the durable record created by the upload workflow. StorageRef is
// unique and is always written to object storage before the row referencing
// it is inserted.
type Note struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	StorageRef string    `json:"storage_ref"`
	PublicURL  string    `json:"public_url"`
	Title      string    `json:"title"`
	Tags       []string  `json:"tags"`
	OCRText    string    `json:"ocr_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// NoteExtraction is the AI-derived content of a note, matching the provider
// wire schema {"title","tags","ocrText"}.
type NoteExtraction struct {
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	OCRText string   `json:"ocrText"`
}

// Placeholder content used when analysis is skipped or fails. The record is
// still created; losing an already-stored file over a transient model
// failure is worse than a placeholder.
const (
	SkipNoticeText     = "AI Extraction Skipped: PDF exceeded 2-page limit."
	AnalysisFailedText = "AI Analysis Failed. Please try manually later."
)

func SkipTags() []string { return []string{"PDF", "Large Document"} }
