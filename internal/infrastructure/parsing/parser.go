package parsing

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

// Schemas check structure only. Value bounds and enum casing are repaired
// in Go after the shape check, so a report with probability 140 validates
// here and comes out clamped, not rejected. No field is required: provider
// output is best-effort, and absent fields default to empty/zero values
// instead of failing the workflow.
const reportSchema = `{
  "type": "object",
  "properties": {
    "successProbability": {"type": "number"},
    "syllabusCoverage": {"type": "number"},
    "topics": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "frequency": {"type": "string"},
          "riskLevel": {"type": "string"},
          "probability": {"type": "number"},
          "description": {"type": "string"},
          "studyTip": {"type": "string"}
        }
      }
    },
    "clusterData": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "x": {"type": "number"},
          "y": {"type": "number"},
          "z": {"type": "number"},
          "risk": {"type": "string"}
        }
      }
    },
    "questionsBreakdown": {"type": "array"},
    "importantQuestions": {"type": "array"}
  }
}`

const noteSchema = `{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "ocrText": {"type": "string"}
  }
}`

var (
	compiledReportSchema = jsonschema.MustCompileString("report.json", reportSchema)
	compiledNoteSchema   = jsonschema.MustCompileString("note.json", noteSchema)
)

// Parser validates raw model output and repairs it into domain objects.
// Parsing is pure and idempotent: the same raw string always yields the
// same result.
type Parser struct{}

func New() *Parser { return &Parser{} }

type rawTopic struct {
	Name        string  `json:"name"`
	Frequency   string  `json:"frequency"`
	RiskLevel   string  `json:"riskLevel"`
	Probability float64 `json:"probability"`
	Description string  `json:"description"`
	StudyTip    string  `json:"studyTip"`
}

type rawClusterPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Risk string  `json:"risk"`
}

type rawReport struct {
	SuccessProbability float64                    `json:"successProbability"`
	SyllabusCoverage   float64                    `json:"syllabusCoverage"`
	Topics             []rawTopic                 `json:"topics"`
	ClusterData        []rawClusterPoint          `json:"clusterData"`
	QuestionsBreakdown []domain.QuestionRecord    `json:"questionsBreakdown"`
	ImportantQuestions []domain.ImportantQuestion `json:"importantQuestions"`
}

// ParseReport turns raw model output into a validated AnalysisReport.
// Percentages are clamped to [0,100], risk enums canonicalized (unknown
// values become Medium), and every slice is non-nil on return.
func (p *Parser) ParseReport(raw string) (*domain.AnalysisReport, error) {
	payload := StripFences(raw)

	if err := validateShape(compiledReportSchema, payload); err != nil {
		return nil, &domain.MalformedResponse{Raw: raw, Err: err}
	}

	var rr rawReport
	if err := json.Unmarshal([]byte(payload), &rr); err != nil {
		return nil, &domain.MalformedResponse{Raw: raw, Err: err}
	}

	report := &domain.AnalysisReport{
		SuccessProbability: domain.ClampPercent(rr.SuccessProbability),
		SyllabusCoverage:   domain.ClampPercent(rr.SyllabusCoverage),
		Topics:             make([]domain.Topic, 0, len(rr.Topics)),
		ClusterData:        make([]domain.ClusterPoint, 0, len(rr.ClusterData)),
		QuestionsBreakdown: rr.QuestionsBreakdown,
		ImportantQuestions: rr.ImportantQuestions,
	}
	for _, t := range rr.Topics {
		report.Topics = append(report.Topics, domain.Topic{
			Name:        t.Name,
			Frequency:   domain.CanonicalRiskLevel(t.Frequency),
			RiskLevel:   domain.CanonicalRiskLevel(t.RiskLevel),
			Probability: domain.ClampPercent(t.Probability),
			Description: t.Description,
			StudyTip:    t.StudyTip,
		})
	}
	for _, c := range rr.ClusterData {
		report.ClusterData = append(report.ClusterData, domain.ClusterPoint{
			X:    c.X,
			Y:    c.Y,
			Z:    c.Z,
			Risk: domain.CanonicalRiskLevel(c.Risk),
		})
	}
	if report.QuestionsBreakdown == nil {
		report.QuestionsBreakdown = []domain.QuestionRecord{}
	}
	if report.ImportantQuestions == nil {
		report.ImportantQuestions = []domain.ImportantQuestion{}
	}
	return report, nil
}

// ParseNote turns raw model output into a note extraction. Tags are never
// nil on return.
func (p *Parser) ParseNote(raw string) (*domain.NoteExtraction, error) {
	payload := StripFences(raw)

	if err := validateShape(compiledNoteSchema, payload); err != nil {
		return nil, &domain.MalformedResponse{Raw: raw, Err: err}
	}

	var ext domain.NoteExtraction
	if err := json.Unmarshal([]byte(payload), &ext); err != nil {
		return nil, &domain.MalformedResponse{Raw: raw, Err: err}
	}
	if ext.Tags == nil {
		ext.Tags = []string{}
	}
	return &ext, nil
}

func validateShape(schema *jsonschema.Schema, payload string) error {
	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}

// StripFences removes Markdown code fences the provider wraps JSON in,
// with or without a language tag. Input without fences passes through
// unchanged.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
