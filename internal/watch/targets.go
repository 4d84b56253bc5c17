package watch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadTargets reads a targets file: one locator per line. Blank lines and
// lines starting with '#' are skipped, surrounding whitespace is trimmed and
// duplicates keep their first position.
func ReadTargets(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open targets file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	targets, err := ParseTargets(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file %s: %w", path, err)
	}
	return targets, nil
}

// ParseTargets is ReadTargets over an arbitrary reader.
func ParseTargets(r io.Reader) ([]string, error) {
	var targets []string
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		targets = append(targets, line)
	}
	return targets, sc.Err()
}
