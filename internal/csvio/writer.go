package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/tweetcollector/internal/model"
)

// EnsureDir creates the parent directory of path if needed.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// WriteScrapeTable writes table to path with a "date,id" header,
// creating parent directories as needed.
func WriteScrapeTable(path string, table model.ScrapeTable) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path) //nolint:gosec // paths come from the command line
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{model.ColumnDate, model.ColumnID}); err != nil {
		_ = f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range table {
		if err := w.Write([]string{r.Date, string(r.ID)}); err != nil {
			_ = f.Close()
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush csv records: %w", err)
	}
	return f.Close()
}
