package extract

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// boundaryStrategy is one candidate pattern for locating the stem/options
// boundary inside a stem whose primary split failed.
type boundaryStrategy struct {
	name string
	re   *regexp.Regexp
}

// repairStrategies are tried in order; the first match wins. The first
// pattern requires an uppercase letter right after the bare "A" to rule
// out the standalone Portuguese article "a"; the later patterns relax that
// requirement step by step.
var repairStrategies = []boundaryStrategy{
	{name: "line_start_uppercase", re: regexp.MustCompile(`(?m)^[ \t]*A\s+[A-ZÁÀÂÃÉÈÊÍÏÓÔÕÖÚÇÑ]`)},
	{name: "whitespace_bounded", re: regexp.MustCompile(`\s+A\s+`)},
	{name: "line_start", re: regexp.MustCompile(`(?m)^A\s`)},
}

// Repaired is the outcome of a standalone repair pass over a stem.
type Repaired struct {
	Stem    string            `json:"stem_clean"`
	Options map[string]string `json:"options"`
}

// RepairOptions re-scans a stem whose option split failed, trying each
// boundary strategy in order. It returns the repaired stem and options and
// whether any strategy produced a boundary. The input is never modified.
func RepairOptions(stem string) (Repaired, bool) {
	text := norm.NFC.String(stem)

	for _, strategy := range repairStrategies {
		loc := strategy.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		repaired := Repaired{
			Stem:    cleanStem(text[:loc[0]]),
			Options: newOptions(),
		}
		splitOptions(text[loc[0]:], repaired.Options)
		return repaired, true
	}
	return Repaired{Stem: cleanStem(text), Options: newOptions()}, false
}

// needsRepair reports the trigger condition for the fallback stage:
// options A and B both empty after the primary parse.
func needsRepair(options map[string]string) bool {
	return options["A"] == "" && options["B"] == ""
}

// repairAccepted reports whether a repair outcome may be committed. A
// repair that recovers neither A nor B must not replace the original
// parse.
func repairAccepted(options map[string]string) bool {
	return options["A"] != "" || options["B"] != ""
}

// RepairQuestion applies the fallback boundary scan to a parsed question
// when its primary split failed, committing the repaired stem and options
// only when the repair actually recovered option A or B. It reports
// whether the question was changed.
func RepairQuestion(q *ParsedQuestion) bool {
	if !needsRepair(q.Options) {
		return false
	}
	repaired, found := RepairOptions(q.Stem)
	if !found || !repairAccepted(repaired.Options) {
		return false
	}
	q.Stem = repaired.Stem
	q.Options = repaired.Options
	return true
}

// RepairAll runs the repair pass over an assembled collection, returning a
// new collection and the number of repaired records. Records whose option
// A is already present pass through untouched, so re-running the pass over
// repaired output is a no-op.
func RepairAll(questions []Question) ([]Question, int) {
	out := make([]Question, len(questions))
	repairedCount := 0

	for i, q := range questions {
		out[i] = q
		if !needsRepair(q.Options) {
			continue
		}
		repaired, found := RepairOptions(q.Stem)
		if !found || !repairAccepted(repaired.Options) {
			continue
		}
		out[i].Stem = repaired.Stem
		out[i].Options = repaired.Options
		repairedCount++
	}
	return out, repairedCount
}
