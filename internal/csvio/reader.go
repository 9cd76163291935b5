package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nao1215/tweetcollector/internal/model"
)

// utf8BOM is stripped from the first header cell when present.
const utf8BOM = "\ufeff"

// ReadColumns reads the named columns from the CSV file at path.
// Each returned row holds the values in the order the columns were requested.
// Columns not requested are ignored.
func ReadColumns(path string, columns ...string) ([][]string, error) {
	f, err := os.Open(path) //nolint:gosec // paths come from the command line
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return readColumns(f, path, columns)
}

func readColumns(r io.Reader, path string, columns []string) ([][]string, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
		}
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	positions := make([]int, len(columns))
	for i, col := range columns {
		pos, ok := index[col]
		if !ok {
			return nil, &SchemaError{Path: path, Column: col}
		}
		positions[i] = pos
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		row := make([]string, len(positions))
		for i, pos := range positions {
			row[i] = record[pos]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadIDs reads the id column of a CSV file.
func ReadIDs(path string) ([]model.ID, error) {
	rows, err := ReadColumns(path, model.ColumnID)
	if err != nil {
		return nil, err
	}
	ids := make([]model.ID, len(rows))
	for i, row := range rows {
		ids[i] = model.ID(row[0])
	}
	return ids, nil
}

// ReadScrapeTable reads the date and id columns of a scrape run file.
func ReadScrapeTable(path string) (model.ScrapeTable, error) {
	rows, err := ReadColumns(path, model.ColumnDate, model.ColumnID)
	if err != nil {
		return nil, err
	}
	table := make(model.ScrapeTable, len(rows))
	for i, row := range rows {
		table[i] = model.ScrapeRecord{Date: row[0], ID: model.ID(row[1])}
	}
	return table, nil
}
