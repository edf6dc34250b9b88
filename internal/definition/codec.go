// Package definition encodes English definition lists as a single
// delimited string, "/ first / second /", so that substring queries can tell
// whole, leading, trailing and interior matches apart.
package definition

import (
	"fmt"
	"strings"

	"github.com/dshills/cedict-mcp/pkg/types"
)

const (
	openDelim  = "/ "
	closeDelim = " /"
	sep        = " / "
)

// Encode joins definitions as "/ d1 / d2 / ... /". Each definition is
// trimmed; empty definitions and definitions containing "/" are rejected
// because they would not survive Decode.
func Encode(defs []string) (string, error) {
	if len(defs) == 0 {
		return "", fmt.Errorf("%w: no definitions", types.ErrInvalidEntry)
	}
	var sb strings.Builder
	sb.WriteString("/")
	for _, d := range defs {
		d = strings.TrimSpace(d)
		if d == "" {
			return "", fmt.Errorf("%w: empty definition", types.ErrInvalidEntry)
		}
		if strings.Contains(d, "/") {
			return "", fmt.Errorf("%w: definition %q contains '/'", types.ErrInvalidEntry, d)
		}
		sb.WriteString(" ")
		sb.WriteString(d)
		sb.WriteString(closeDelim)
	}
	return sb.String(), nil
}

// Decode splits the output of Encode back into definitions.
func Decode(text string) ([]string, error) {
	if len(text) < len(openDelim)+len(closeDelim)+1 || !strings.HasPrefix(text, openDelim) || !strings.HasSuffix(text, closeDelim) {
		return nil, fmt.Errorf("%w: definitions %q", types.ErrMalformedEncoding, text)
	}
	return strings.Split(text[len(openDelim):len(text)-len(closeDelim)], sep), nil
}
