package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// maxQuestionNumber bounds accepted question numbers. Header candidates
	// outside [1, maxQuestionNumber] are treated as ordinary text.
	maxQuestionNumber = 200

	// pageMarkerPrefix starts every page delimiter inserted between pages.
	pageMarkerPrefix = "--- PAGE "
)

// headerRe matches a question header at a line start: the word QUESTÃO
// (accent and spelling variants tolerated, case-insensitive), a 1-3 digit
// number and optional trailing punctuation.
var headerRe = regexp.MustCompile(`(?im)^[ \t]*quest[ãàa]o\s*(\d{1,3})\s*[:\-]?`)

// PageMarker returns the delimiter line inserted before a page's text.
func PageMarker(pageNumber int) string {
	return fmt.Sprintf("\n%s%d ---\n", pageMarkerPrefix, pageNumber)
}

// BuildDocumentText concatenates page texts into the single document text
// consumed by segmentation, delimiting each page with a marker line.
func BuildDocumentText(pages []PageText) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(PageMarker(p.PageNumber))
		b.WriteString(p.Text)
	}
	return b.String()
}

// SegmentBlocks slices the full document text into question blocks, one per
// accepted header, in document-scan order. Headers whose number falls
// outside the accepted range produce no block. Each block spans from its
// header to the start of the next accepted header or to document end, and
// carries the page estimate for its header position.
func SegmentBlocks(documentText string) []QuestionBlock {
	text := norm.NFC.String(documentText)

	matches := headerRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	type candidate struct {
		number int
		start  int
	}
	accepted := make([]candidate, 0, len(matches))
	for _, m := range matches {
		number, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || number < 1 || number > maxQuestionNumber {
			continue
		}
		accepted = append(accepted, candidate{number: number, start: m[0]})
	}

	blocks := make([]QuestionBlock, 0, len(accepted))
	for i, c := range accepted {
		end := len(text)
		if i+1 < len(accepted) {
			end = accepted[i+1].start
		}
		blocks = append(blocks, QuestionBlock{
			Number:     c.number,
			RawText:    text[c.start:end],
			OriginPage: originPage(text, c.start),
		})
	}
	return blocks
}

// originPage estimates the page containing a text offset by counting page
// markers before it. A question spanning several pages is attributed to the
// page holding its header line.
func originPage(text string, offset int) int {
	page := strings.Count(text[:offset], pageMarkerPrefix)
	if page < 1 {
		page = 1
	}
	return page
}
