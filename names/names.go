// Package names reads newline separated name lists and maps a random
// draw onto one of the entries.
package names

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrDivisionByZero is returned when the list has a single entry. The
// selection denominator is len-1, so such a list has no valid index.
var ErrDivisionByZero = errors.New("division by zero: name list has a single entry")

// List is the ordered sequence of entries from a name file, including a
// trailing empty entry when the file ends with a newline.
type List []string

// ReadFile reads and parses the name file at path.
func ReadFile(path string) (List, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %q not found: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return Parse(b)
}

// Parse splits content into a List. CRLF and lone CR line endings are
// treated as newlines.
func Parse(content []byte) (List, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("error reading file: content is not valid UTF-8")
	}
	s := strings.ReplaceAll(string(content), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return List(strings.Split(s, "\n")), nil
}

// Index maps draw onto the list as draw mod (len-1). The last entry is
// never reachable.
func (l List) Index(draw int) (int, error) {
	n := len(l) - 1
	if n == 0 {
		return 0, ErrDivisionByZero
	}
	if n < 0 {
		return 0, fmt.Errorf("empty name list")
	}
	idx := draw % n
	if idx < 0 {
		idx += n
	}
	return idx, nil
}

// Select returns the entry chosen by draw, verbatim.
func (l List) Select(draw int) (string, error) {
	idx, err := l.Index(draw)
	if err != nil {
		return "", err
	}
	return l[idx], nil
}
