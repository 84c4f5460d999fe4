package extract

import "sort"

// AssociateImages returns the image references for a block's origin page.
// A question whose body continues onto later pages only sees the images of
// the page holding its header; that approximation is part of the contract,
// not something to patch by searching adjacent pages.
func AssociateImages(block QuestionBlock, images PageImages) []string {
	refs, ok := images[block.OriginPage]
	if !ok || len(refs) == 0 {
		return []string{}
	}
	out := make([]string, len(refs))
	copy(out, refs)
	return out
}

// Assemble merges parsed questions, the answer key and page images into
// the final record collection, sorted ascending by question number. A
// number absent from the answer key yields an empty correct letter; a
// letter is never guessed.
func Assemble(blocks []QuestionBlock, parsed []ParsedQuestion, key AnswerKey, images PageImages) []Question {
	questions := make([]Question, 0, len(blocks))
	for i, block := range blocks {
		refs := AssociateImages(block, images)
		questions = append(questions, Question{
			Number:        block.Number,
			Stem:          parsed[i].Stem,
			Options:       parsed[i].Options,
			CorrectLetter: key[block.Number],
			Images:        refs,
			HasImage:      len(refs) > 0,
		})
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Number < questions[j].Number
	})
	return questions
}

// Diagnose computes the informational counts reported alongside a result.
func Diagnose(questions []Question) Diagnostics {
	d := Diagnostics{TotalQuestions: len(questions)}
	for _, q := range questions {
		if q.HasImage {
			d.WithImages++
		}
		if q.Options["A"] == "" {
			d.EmptyOptionA = append(d.EmptyOptionA, q.Number)
		}
	}
	return d
}
