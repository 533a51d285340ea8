package gemini

import (
	"strings"
	"unicode/utf8"
)

// Context caps per workflow. Truncation is silent; an oversized syllabus is
// still a valid request.
const (
	ReportContextChars     = 20000
	CheatSheetContextChars = 30000
)

const reportTemplate = `You are a Statistical Analyst for University Exams.

SYLLABUS / CONTEXT:
{{CONTEXT}}

TASK:
1. Analyze ALL the provided images of past papers.
2. FIRST, EXTRACT all visible questions TRANSCRIBED EXACTLY from the images. Do not invent questions.
3. If the images are blurry, do your best to transcribe the actual text present.
4. Count how often specific Topics (relevant to the Syllabus/Context) appear.
5. Generate a Risk Report in JSON format.
6. IMPORTANT: Return ONLY valid JSON.

OUTPUT JSON SCHEMA:
{
    "successProbability": number,
    "syllabusCoverage": number,
    "topics": [
        {
            "name": "Topic Name",
            "frequency": "High" | "Medium" | "Low",
            "riskLevel": "High" | "Medium" | "Low",
            "probability": number,
            "description": "Brief explanation",
            "studyTip": "Actionable tip"
        }
    ],
    "clusterData": [
        { "x": number, "y": number, "z": number, "risk": "High" | "Medium" | "Low" }
    ],
    "questionsBreakdown": [
        {
            "questionText": "Short excerpt of question...",
            "chapter": "Chapter Name",
            "year": "2023/2024 etc (estimate)",
            "topic": "Specific Topic"
        }
    ],
    "importantQuestions": [
        {
            "question": "Full question text",
            "reason": "Repeated 3 times",
            "priority": "High"
        }
    ]
}`

const notePrompt = `You are an EXPERT OCR SYSTEM.
Analyze this document (PDF/Image) of study notes.

YOUR TASKS:
1. **Title**: Generate a concise title.
2. **Tags**: Identify key tags.
3. **OCR / Full Text**: Perform a VERBATIM transcription.

TRANSCRIPTION RULES:
- EXTRACT TEXT FROM EVERY SINGLE PAGE. Do not stop after the first page.
- DO NOT SUMMARIZE. Write the exact text found in the document.
- If the document is long, continue transcribing until the very end.
- Use Markdown headers (##) to separate pages or sections if clear.
- Be precise with formulas and technical terms.

OUTPUT JSON SCHEMA (Return ONLY raw, valid JSON):
{
    "title": "String",
    "tags": ["String", "String"],
    "ocrText": "String (Markdown supported)"
}

IMPORTANT: Return ONLY valid JSON.`

const cheatSheetTemplate = `You are a "Last Hour" Revision Expert.

TASK:
Analyze the following course notes/slides text and create a **Single-Page Smart Cheat Sheet**.

GOAL:
The student has their exam in 1 hour. They need to memorize the CRITICAL information only.

OUTPUT FORMAT:
- **Header**: Course Title & "Last Hour Guide"
- **Section 1: The "Must Memorize" Formulas/Definitions** (Use LaTeX or clean text)
- **Section 2: Key Concepts vs. Common Pitfalls**
- **Section 3: Timeline / Process Flows**
- **Section 4: Golden Keywords**

CONSTRAINTS:
- IGNORE introductions, generic examples.
- Condense into 1-2 mobile screens.
- Use Emoji bullets.
- Format strictly as Markdown.

INPUT TEXT:
{{CONTEXT}}`

// buildPrompt is the deterministic truncate-then-interpolate step every
// workflow shares. The cut backs up to a rune boundary so a multi-byte
// character at the cap is dropped whole, never split.
func buildPrompt(template, context string, maxContextChars int) string {
	if len(context) > maxContextChars {
		cut := maxContextChars
		for cut > 0 && !utf8.RuneStart(context[cut]) {
			cut--
		}
		context = context[:cut]
	}
	return strings.Replace(template, "{{CONTEXT}}", context, 1)
}

func BuildReportPrompt(context string) string {
	return buildPrompt(reportTemplate, context, ReportContextChars)
}

func BuildNotePrompt() string {
	return notePrompt
}

func BuildCheatSheetPrompt(extractedText string) string {
	return buildPrompt(cheatSheetTemplate, extractedText, CheatSheetContextChars)
}

// Prompts exposes the templates through the ports.PromptBuilder contract.
type Prompts struct{}

func (Prompts) ReportPrompt(context string) string { return BuildReportPrompt(context) }

func (Prompts) NotePrompt() string { return BuildNotePrompt() }

func (Prompts) CheatSheetPrompt(extractedText string) string {
	return BuildCheatSheetPrompt(extractedText)
}
