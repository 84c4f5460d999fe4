package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Extraction Tools
	ExamExtractFileDescription = `Run the full exam extraction pipeline on a PDF and get structured question records.

**When to use:** Need the questions of a Revalida-style exam PDF as structured data: number, stem, options A-E, official answer, image references.

**Why it's useful:** One call handles segmentation, option splitting, inline-option repair, answer-key matching and image association, and persists the run so results can be fetched again later.

**Examples:**
• Full exam: "Extract prova-2023-1.pdf to build a question bank"
• Exam with separate answers: "Extract prova.pdf using gabarito.pdf as the answer key"
• Review prep: "Turn retake-exam.pdf into records for spaced-repetition import"

**Common workflows:**
1. Question Banking: Extract exam → Review diagnostics → Import records into study tools
2. Split Documents: Extract with gabarito_path → Answers merged from the separate key PDF
3. Quality Control: Extract → Check empty-option diagnostics → Repair or re-scan flagged items

**Best practices:** Validate the file first with 'pdf_validate_file'; pass gabarito_path whenever the official answers ship as their own PDF.`

	ExamAnswerKeyDescription = `Scan a PDF for an official answer key and return the question-number to letter map.

**When to use:** Only need the official answers from an exam or gabarito PDF, not the full question records.

**Why it's useful:** Finds the answer-key section by its marker (gabarito, respostas), scans only the region after it, and keeps the last printed value when a corrected key overrides an earlier one.

**Examples:**
• Grade answers: "Get the answer map from gabarito-definitivo.pdf to score a practice run"
• Verify extraction: "Compare the key in prova.pdf against extracted records"
• Corrected keys: "Read gabarito-retificado.pdf where some answers were republished"

**Common workflows:**
1. Scoring: Extract key → Compare with student answers → Compute results
2. Cross-check: Extract key from exam PDF → Extract key from official gabarito → Diff the maps
3. Merge: Run on a separate key PDF → Feed into downstream grading systems

**Best practices:** Works on any PDF; when no marker is present only the final stretch of the document is scanned, so keys buried mid-document need their marker intact.`

	ExamRepairTextDescription = `Recover inline options A-E from question text whose line structure was lost.

**When to use:** A question stem carries its options glued into the same line, typically after PDF text extraction dropped the line breaks.

**Why it's useful:** Applies the same boundary-detection strategies the pipeline uses, so a stem like "...conduta? A Observar B Operar C Encaminhar" comes back as a clean stem plus separated options.

**Examples:**
• Manual fix-up: "Repair this question whose options ended up inside the stem"
• Preprocessing: "Clean pasted exam text before importing it"
• Debugging: "Check why a specific stem failed the option split"

**Common workflows:**
1. Spot Repair: Extract exam → Find records with empty options → Repair their stems individually
2. Text Import: Paste raw question text → Repair → Store structured result
3. Pipeline Debugging: Feed a problematic stem → Inspect which options are recovered

**Best practices:** The repair never invents content; when no option boundary is found the text comes back unchanged with empty options.`

	// PDF Utility Tools
	PDFValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before attempting to extract any PDF file, especially in automated workflows or when handling user uploads.

**Why it's useful:** Prevents processing errors, identifies corrupted files early, and ensures compatibility with extraction tools.

**Examples:**
• Batch processing safety: "Validate all PDFs in /exams/ before bulk extraction"
• Upload verification: "Check user-uploaded prova.pdf is valid before processing"
• Quality control: "Verify scanned-exam.pdf is readable before queueing it"

**Common workflows:**
1. Automated Processing: Validate → Extract if valid → Handle errors gracefully
2. File Quality Check: Validate → Report issues → Fix or reject bad files
3. Pre-processing Pipeline: Validate → Route to appropriate extraction method

**Best practices:** Always run this first in automated workflows, essential for systems handling unknown PDFs.`

	PDFStatsFileDescription = `Get comprehensive metadata and statistics about PDF documents.

**When to use:** Need document properties, page count, file size, creation info, or to understand document structure before processing.

**Why it's useful:** Provides essential metadata for document management, helps choose processing strategies, and offers insights into document origin.

**Examples:**
• Document management: "Get creation date and producer from prova-2023.pdf for cataloging"
• Processing decisions: "Check page count of full-exam.pdf to estimate processing time"
• Provenance: "Get metadata from official-gabarito.pdf to confirm its source"

**Common workflows:**
1. Document Cataloging: Get stats → Store metadata → Index for search
2. Processing Planning: Check stats → Choose extraction method → Allocate resources
3. Audit: Extract metadata → Verify properties → Log for records

**Best practices:** Useful for exam archives, helps estimate processing requirements for large files.`

	// Utility Tools
	ExamServerInfoDescription = `Get real-time server status, available tools, and data directory contents.

**When to use:** Starting work with the extraction server, troubleshooting issues, or checking available functionality.

**Why it's useful:** Provides complete overview of server capabilities, current configuration, and which exam PDFs are present for informed decision-making.

**Examples:**
• System check: "Verify the server is ready and list exam PDFs before batch extraction"
• Troubleshooting: "Check server info to diagnose why files aren't being found"
• Capability discovery: "See all available tools and their descriptions for new projects"

**Common workflows:**
1. Session Startup: Check server info → Verify capabilities → Plan extraction approach
2. Debugging: Review server status → Check data directory path → Verify tool availability
3. Planning: Review available tools → Choose appropriate methods → Execute workflow

**Best practices:** Run at start of sessions, the directory listing shows exactly which PDFs the server can reach.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"exam_extract_file": ExamExtractFileDescription,
	"exam_answer_key":   ExamAnswerKeyDescription,
	"exam_repair_text":  ExamRepairTextDescription,
	"pdf_validate_file": PDFValidateFileDescription,
	"pdf_stats_file":    PDFStatsFileDescription,
	"exam_server_info":  ExamServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
