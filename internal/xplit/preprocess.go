package xplit

import (
	"fmt"
	"strings"
)

// preprocess validates the header line, strips comments and drops lines that
// become empty. The returned slice keeps source order, header included.
func (p *parser) preprocess(src string) ([]string, error) {
	rawLines := strings.Split(src, "\n")
	header := strings.Fields(rawLines[0])
	if len(header) < 2 || header[0] != "@xplit" {
		return nil, fmt.Errorf("%w: missing or invalid header", ErrFormat)
	}
	p.version = header[1]
	if p.version != Version {
		p.logger.Warn("unmatched xplit record version",
			"supported", Version,
			"declared", p.version,
		)
	}

	lines := make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		if cleaned := uncommentLine(line); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines, nil
}

// uncommentLine trims a line and normalizes its comment. A trailing comment
// is kept, re-attached as " #<trimmed text>", so the document round-trips;
// a comment with no text after the delimiter is dropped.
func uncommentLine(line string) string {
	code, comment, found := strings.Cut(line, "#")
	if !found {
		return strings.TrimSpace(line)
	}
	code = strings.TrimSpace(code)
	if comment = strings.TrimSpace(comment); comment != "" {
		return code + " #" + comment
	}
	return code
}
