package extract

// OptionLetters holds the five valid option letters in order.
var OptionLetters = []string{"A", "B", "C", "D", "E"}

// PageText represents the text content of a single document page
type PageText struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// PageImages maps a page number to the ordered image references found on
// that page. Pages without images carry no entry.
type PageImages map[int][]string

// QuestionBlock represents the raw text span belonging to one question,
// from its header to the next header or document end
type QuestionBlock struct {
	Number     int    `json:"number"`
	RawText    string `json:"raw_text"`
	OriginPage int    `json:"origin_page"`
}

// AnswerKey maps a question number to its official answer letter.
// Partial coverage is normal; a missing entry means unknown.
type AnswerKey map[int]string

// ParsedQuestion represents one block split into stem and options.
// Options always carries exactly the keys A through E; an empty value
// means the option was not recovered.
type ParsedQuestion struct {
	Stem    string            `json:"stem"`
	Options map[string]string `json:"options"`
}

// Question represents a fully assembled question record
type Question struct {
	Number        int               `json:"number"`
	Stem          string            `json:"stem"`
	Options       map[string]string `json:"options"`
	CorrectLetter string            `json:"correct_letter"`
	Images        []string          `json:"images"`
	HasImage      bool              `json:"has_image"`
}

// Diagnostics holds informational counts computed during assembly
type Diagnostics struct {
	TotalQuestions int   `json:"total_questions"`
	WithImages     int   `json:"questions_with_images"`
	EmptyOptionA   []int `json:"empty_option_a,omitempty"`
}

// Result represents the outcome of one extraction run
type Result struct {
	Questions   []Question  `json:"questions"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// newOptions returns an options map with all five letters present and empty.
func newOptions() map[string]string {
	m := make(map[string]string, len(OptionLetters))
	for _, letter := range OptionLetters {
		m[letter] = ""
	}
	return m
}
