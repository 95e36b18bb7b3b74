package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chrissnell/glucosereport/internal/types"
)

// Discover returns the first CSV file in dir, in lexical order. It is a
// convenience for running the tool inside an export directory; the pipeline
// itself only ever takes an explicit path.
func Discover(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", &types.NoInputFileError{Dir: dir}
	}

	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}
