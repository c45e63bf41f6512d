package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser renders CSV chapters (glossaries, reference tables) as a
// Markdown table. The first row is the header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Source, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return &Source{}, nil
	}

	headers := records[0]
	width := len(headers)
	for _, row := range records[1:] {
		width = max(width, len(row))
	}

	var sb strings.Builder
	writeRow(&sb, headers, width)
	sb.WriteString("|")
	for range width {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range records[1:] {
		writeRow(&sb, row, width)
	}

	return &Source{Markdown: sb.String()}, nil
}

func writeRow(sb *strings.Builder, cells []string, width int) {
	sb.WriteString("|")
	for i := range width {
		cell := ""
		if i < len(cells) {
			cell = escapeCell(cells[i])
		}
		sb.WriteString(" " + cell + " |")
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
