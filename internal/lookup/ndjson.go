package lookup

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nao1215/tweetcollector/internal/csvio"
)

// WriteNDJSON writes one compact JSON document per line to path, creating
// parent directories. An empty slice produces an empty file.
// HTML characters in tweet text are written as-is.
func WriteNDJSON[T any](path string, docs []T) (err error) {
	if err := csvio.EnsureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path) //nolint:gosec // Output path is chosen by the operator
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, doc := range docs {
		// Encode compacts raw documents and terminates each with '\n'.
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode line %d of %s: %w", i+1, path, err)
		}
	}
	return w.Flush()
}
