package gemini

import "github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"

// Candidate lists are fixed, ordered configuration data per workflow:
// cheapest/most-requested variant first, most-general-purpose last. They are
// part of the contract with the provider, not runtime configuration.
var (
	ReportCandidates = []string{
		"gemma-3-27b-it",
		"gemini-2.0-flash-exp",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}

	NoteCandidates = []string{
		"gemini-1.5-pro",
		"gemini-1.5-flash",
		"gemini-1.0-pro",
	}

	CheatSheetCandidates = []string{
		"gemma-3-27b-it",
		"gemini-2.0-flash-exp",
		"gemini-1.5-flash",
		"gemini-1.5-flash-001",
		"gemini-1.5-pro",
		"gemini-1.0-pro",
	}
)

// Per-workflow generation options: lower temperature for verbatim
// extraction, higher for report generation.
var (
	ReportOptions     = ports.GenerationOptions{Temperature: 0.3}
	NoteOptions       = ports.GenerationOptions{Temperature: 0.1, MaxOutputTokens: 8192}
	CheatSheetOptions = ports.GenerationOptions{Temperature: 0.2, MaxOutputTokens: 8192}
)
