package importer

import (
	"errors"
	"strings"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// ErrEmptyFile is returned when a file has no non-blank lines.
var ErrEmptyFile = errors.New("file contains no data")

// Tokenize splits bank export text into a header row and data rows.
//
// Cells are split on every comma; quoted cells containing commas are not
// supported. Blank lines are dropped.
func Tokenize(text string) ([]string, []model.RawRow, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, nil, ErrEmptyFile
	}

	headers := splitCells(strings.TrimPrefix(lines[0], "\ufeff"))

	rows := make([]model.RawRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, model.RawRow(splitCells(line)))
	}
	return headers, rows, nil
}

func splitCells(line string) []string {
	cells := strings.Split(line, ",")
	for i, c := range cells {
		cells[i] = cleanCell(c)
	}
	return cells
}

func cleanCell(c string) string {
	c = strings.TrimSpace(c)
	if len(c) >= 2 && c[0] == '"' && c[len(c)-1] == '"' {
		c = c[1 : len(c)-1]
	}
	return strings.TrimSpace(c)
}
