package xplit

import (
	"fmt"
	"regexp"
	"strings"
)

// singleLine extracts the value of a one-line directive such as @title.
func singleLine(content, name string) (string, error) {
	re := regexp.MustCompile(`@` + name + `\s+(.*)`)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return "", fmt.Errorf("%w: missing section: %s", ErrFormat, name)
	}
	return strings.TrimSpace(m[1]), nil
}

// block extracts the body of a block directive such as @people: everything
// between the marker line and the next @-prefixed line, trimmed. A marker
// with no terminating @-line is as fatal as a missing one.
func block(content, name string) (string, error) {
	re := regexp.MustCompile(`@` + name + `\n([\s\S]+?)\n@`)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return "", fmt.Errorf("%w: missing section: %s", ErrFormat, name)
	}
	return strings.TrimSpace(m[1]), nil
}
