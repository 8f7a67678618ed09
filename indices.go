package bodycrop

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LoadVertexIndices reads the body model vertex indices to keep from the given
// text file.  It should contain one index per line, blank lines and lines
// starting with # are skipped.
func LoadVertexIndices(file string) ([]int, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, errors.Wrap(err, "error opening file")
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var indices []int
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx, err := strconv.Atoi(line)

		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}

		if idx < 0 {
			return nil, errors.Errorf("line %d: negative vertex index %d", lineNo, idx)
		}

		indices = append(indices, idx)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading file")
	}

	if len(indices) == 0 {
		return nil, errors.Errorf("no vertex indices in %s", file)
	}

	return indices, nil
}
