// Package export writes assembled question sets to XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/examtools/revalida-extract/internal/extract"
)

const sheetName = "Questions"

var columns = []string{
	"Number", "Stem",
	"Option A", "Option B", "Option C", "Option D", "Option E",
	"Correct", "Images", "Has Image",
}

// WriteQuestions writes one row per question to w as an XLSX workbook.
func WriteQuestions(w io.Writer, questions []extract.Question) error {
	f, err := buildWorkbook(questions)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteFile writes the workbook to the given path.
func WriteFile(path string, questions []extract.Question) error {
	f, err := buildWorkbook(questions)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func buildWorkbook(questions []extract.Question) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if err := writeHeader(f); err != nil {
		f.Close()
		return nil, err
	}

	for i, q := range questions {
		values := []interface{}{
			q.Number,
			q.Stem,
			q.Options["A"],
			q.Options["B"],
			q.Options["C"],
			q.Options["D"],
			q.Options["E"],
			q.CorrectLetter,
			strings.Join(q.Images, ", "),
			q.HasImage,
		}
		if err := writeRow(f, i+2, values); err != nil {
			f.Close()
			return nil, err
		}
	}

	widths := []struct {
		start, end string
		width      float64
	}{
		{"A", "A", 10}, // number
		{"B", "B", 80}, // stem
		{"C", "G", 40}, // options
		{"H", "H", 10}, // correct letter
		{"I", "I", 30}, // image refs
		{"J", "J", 10}, // has image
	}
	for _, cw := range widths {
		if err := f.SetColWidth(sheetName, cw.start, cw.end, cw.width); err != nil {
			f.Close()
			return nil, fmt.Errorf("setting column width: %w", err)
		}
	}

	return f, nil
}

func writeHeader(f *excelize.File) error {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	if err := writeRow(f, 1, values); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "J1", style); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("resolving cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("writing cell %s: %w", cell, err)
		}
	}
	return nil
}
