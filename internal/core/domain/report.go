package domain

import (
	"strings"
	"time"
)

type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// CanonicalRiskLevel maps a free-form provider value onto the risk enum,
// case-insensitively. Unknown values degrade to Medium rather than failing
// the whole report.
func CanonicalRiskLevel(raw string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return RiskHigh
	case "low":
		return RiskLow
	default:
		return RiskMedium
	}
}

// ClampPercent bounds a probability/coverage value into [0,100].
func ClampPercent(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v)
	}
}

// Topic is one syllabus topic in a risk report.
type Topic struct {
	Name        string    `json:"name"`
	Frequency   RiskLevel `json:"frequency"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Probability int       `json:"probability"`
	Description string    `json:"description"`
	StudyTip    string    `json:"studyTip"`
}

type ClusterPoint struct {
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	Z    float64   `json:"z"`
	Risk RiskLevel `json:"risk"`
}

type QuestionRecord struct {
	QuestionText string `json:"questionText"`
	Chapter      string `json:"chapter"`
	Year         string `json:"year"`
	Topic        string `json:"topic"`
}

type ImportantQuestion struct {
	Question string `json:"question"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

// AnalysisReport is the validated result of the risk-report pipeline. All
// percentage fields are clamped to [0,100] and all slices are non-nil after
// parsing.
type AnalysisReport struct {
	SuccessProbability int                 `json:"successProbability"`
	SyllabusCoverage   int                 `json:"syllabusCoverage"`
	Topics             []Topic             `json:"topics"`
	ClusterData        []ClusterPoint      `json:"clusterData"`
	QuestionsBreakdown []QuestionRecord    `json:"questionsBreakdown"`
	ImportantQuestions []ImportantQuestion `json:"importantQuestions"`
}

// HistoryEntry is one saved risk report in a user's analysis history.
type HistoryEntry struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	CourseName string          `json:"course_name"`
	Report     *AnalysisReport `json:"report"`
	CreatedAt  time.Time       `json:"created_at"`
}
