// Package extract converts page-delimited exam text into structured
// multiple-choice question records. The pipeline is a single synchronous
// pass: segment the document into question blocks, recover the answer key,
// split each block into stem and options, repair blocks whose primary
// split failed, associate page images and assemble the sorted result.
// Identical input always produces identical output.
package extract

import "errors"

// ErrNoPages is returned when extraction is invoked without any page text.
var ErrNoPages = errors.New("extract: no page text provided")

// Extract runs the full pipeline over a document. The answer key is read
// from answerKeyText when provided, otherwise from the document text
// itself. The error is all-or-nothing: no partial result accompanies it.
func Extract(pages []PageText, images PageImages, answerKeyText string) (*Result, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	document := BuildDocumentText(pages)
	blocks := SegmentBlocks(document)

	keySource := answerKeyText
	if keySource == "" {
		keySource = document
	}
	key := ExtractAnswerKey(keySource)

	parsed := make([]ParsedQuestion, len(blocks))
	for i, block := range blocks {
		parsed[i] = ParseBlock(block)
		RepairQuestion(&parsed[i])
	}

	questions := Assemble(blocks, parsed, key, images)
	return &Result{
		Questions:   questions,
		Diagnostics: Diagnose(questions),
	}, nil
}
