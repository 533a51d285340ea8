package domain

import "time"

// FileUpload is one user-submitted file: raw bytes plus the declared media
// type and original name. The declared type is what validation keys on.
type FileUpload struct {
	Name      string
	MediaType string
	Data      []byte
}

type UploadStage string

const (
	StageIdle                UploadStage = "idle"
	StageValidating          UploadStage = "validating"
	StageConfirmationPending UploadStage = "confirmation_pending"
	StageUploading           UploadStage = "uploading"
	StageAnalyzing           UploadStage = "analyzing"
	StagePersisting          UploadStage = "persisting"
	StageComplete            UploadStage = "complete"
	StageFailed              UploadStage = "failed"
)

// UploadJob is the ephemeral state of one note submission. It lives for the
// duration of the workflow and is never persisted.
type UploadJob struct {
	ID           string
	OwnerID      string
	File         FileUpload
	Stage        UploadStage
	SkipAnalysis bool
	PageCount    int
	ParkedAt     time.Time
	LastError    error
}

// InFlight reports whether the job blocks a new submission for the same
// session.
func (j *UploadJob) InFlight() bool {
	switch j.Stage {
	case StageIdle, StageComplete, StageFailed:
		return false
	default:
		return true
	}
}

// Validation verdicts.
type VerdictKind int

const (
	VerdictOk VerdictKind = iota
	VerdictNeedsConfirmation
	VerdictRejected
)

// Verdict is the outcome of pre-upload file validation. NeedsConfirmation
// carries the page count the user must consent to.
type Verdict struct {
	Kind      VerdictKind
	PageCount int
	Reason    string
}
