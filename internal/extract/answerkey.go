package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// answerKeyTailWindow is how far back from document end the scan reaches
// when no answer-key section marker is present. Answer keys conventionally
// trail the document.
const answerKeyTailWindow = 3000

// answerKeyMarkers are the section headings that introduce an answer key,
// searched case-insensitively for their last occurrence.
var answerKeyMarkers = []string{"gabarito", "respostas", "resposta oficial"}

// answerPairRe matches one answer-key entry: a 1-3 digit question number,
// an optional hyphen, space or period separator, and the answer letter.
var answerPairRe = regexp.MustCompile(`\b(\d{1,3})\s*[-\s.]?\s*([A-E])\b`)

// ExtractAnswerKey scans a text body for number-to-letter answer pairs and
// returns the resulting map. The scan is restricted to the text after the
// last answer-key section marker, or to the final characters of the body
// when no marker is present. Later pairs overwrite earlier ones for the
// same number. An empty map is a valid outcome, never an error.
func ExtractAnswerKey(text string) AnswerKey {
	key := make(AnswerKey)
	section := answerKeySection(text)

	for _, m := range answerPairRe.FindAllStringSubmatch(section, -1) {
		number, err := strconv.Atoi(m[1])
		if err != nil || number < 1 || number > maxQuestionNumber {
			continue
		}
		key[number] = m[2]
	}
	return key
}

// answerKeySection narrows the text to the region likely to hold the key.
func answerKeySection(text string) string {
	lower := strings.ToLower(text)

	start := -1
	for _, marker := range answerKeyMarkers {
		if idx := strings.LastIndex(lower, marker); idx > start {
			start = idx
		}
	}
	if start >= 0 {
		return text[start:]
	}
	if len(text) > answerKeyTailWindow {
		return text[len(text)-answerKeyTailWindow:]
	}
	return text
}
