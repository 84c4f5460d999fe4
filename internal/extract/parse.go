package extract

import (
	"regexp"
	"strings"
)

// maxStemLength caps the stem size. A missed next-header would otherwise
// let one block swallow the rest of the document.
const maxStemLength = 8000

var (
	// headerStripRe removes the leading header token from a block.
	headerStripRe = regexp.MustCompile(`(?i)^\s*quest[ãàa]o\s*\d{1,3}\s*[:\-]?\s*`)

	// optionBoundaryRe finds the primary stem/options boundary: the first
	// line starting with a bare option letter followed by whitespace.
	// Punctuation-based markers ("A)", "A.") are unreliable in these
	// layouts; the letter stands alone at the line start.
	optionBoundaryRe = regexp.MustCompile(`\n([A-E])\s+`)

	// optionTokenRe tokenizes an option section into letter markers. The
	// section start counts as a preceding boundary so a leading letter is
	// not lost.
	optionTokenRe = regexp.MustCompile(`(?:^|\s)([A-E])\s+`)

	// whitespaceRe collapses runs of whitespace.
	whitespaceRe = regexp.MustCompile(`\s+`)

	// leadingPeriodRe strips a line-wrap artifact from option starts.
	leadingPeriodRe = regexp.MustCompile(`^\.\s*`)

	// footerRes match running header/footer fragments that bleed into
	// blocks: page delimiters, the free-area marker, edition banners and
	// the document name banner.
	footerRes = []*regexp.Regexp{
		regexp.MustCompile(`---\s*PAGE\s+\d+\s*---`),
		regexp.MustCompile(`[ÁÃ]REA\s+LIVRE`),
		regexp.MustCompile(`(?:PRIMEIRA|SEGUNDA)\s+EDI[ÇC][ÃA]O`),
		regexp.MustCompile(`Revalida\s*\d+/\d+`),
	}
)

// ParseBlock splits one question block into stem and options. When no
// option boundary is found the whole block becomes the stem and every
// option stays empty, which is the trigger condition for repair.
func ParseBlock(block QuestionBlock) ParsedQuestion {
	text := normalizeNewlines(block.RawText)
	text = headerStripRe.ReplaceAllString(text, "")

	parsed := ParsedQuestion{Options: newOptions()}

	loc := optionBoundaryRe.FindStringIndex(text)
	if loc == nil {
		parsed.Stem = cleanStem(text)
		return parsed
	}

	parsed.Stem = cleanStem(text[:loc[0]])
	splitOptions(text[loc[0]:], parsed.Options)
	return parsed
}

// splitOptions walks an option section as an alternating sequence of letter
// tokens and text fragments, assigning each fragment to the letter that
// precedes it. A repeated letter overwrites its earlier value. The walk is
// a two-state machine: awaiting the first letter, then collecting for the
// current letter until the next token flushes it.
func splitOptions(section string, options map[string]string) {
	matches := optionTokenRe.FindAllStringSubmatchIndex(section, -1)

	current := ""
	start := 0
	for _, m := range matches {
		if current != "" {
			options[current] = cleanOptionText(section[start:m[0]])
		}
		current = section[m[2]:m[3]]
		start = m[1]
	}
	if current != "" {
		options[current] = cleanOptionText(section[start:])
	}
}

// cleanStem normalizes a stem: footer fragments removed, whitespace
// collapsed, length capped.
func cleanStem(text string) string {
	for _, re := range footerRes {
		text = re.ReplaceAllString(text, "")
	}
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) > maxStemLength {
		text = string(runes[:maxStemLength])
	}
	return text
}

// cleanOptionText normalizes one option value: whitespace collapsed, a
// single leading period stripped, and everything truncated from the first
// footer fragment onward, since such fragments mark bleed-through rather
// than option content.
func cleanOptionText(text string) string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	text = leadingPeriodRe.ReplaceAllString(text, "")

	cut := len(text)
	for _, re := range footerRes {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	return strings.TrimSpace(text[:cut])
}

// normalizeNewlines maps Windows and old Mac line terminators to \n.
func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
