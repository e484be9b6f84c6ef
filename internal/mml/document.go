package mml

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var (
	ErrEmptyInput     = errors.New("mml: empty input")
	ErrMalformedInput = errors.New("mml: input must start with MML@ and end with ;")
)

var trackJoint = regexp.MustCompile(`(?i);mml@`)

const validChars = "tvolcdefgabrn&+#.><-0123456789"

// InvalidCharsError lists characters outside the engine's MML alphabet.
type InvalidCharsError struct {
	Chars []rune
}

func (e *InvalidCharsError) Error() string {
	quoted := make([]string, len(e.Chars))
	for i, r := range e.Chars {
		quoted[i] = fmt.Sprintf("%q", r)
	}
	return "mml: unsupported characters " + strings.Join(quoted, ", ")
}

// Clean folds full-width characters to their ASCII forms, drops whitespace
// and merges concatenated "MML@...;MML@...;" blocks into one document.
func Clean(src string) string {
	src = width.Fold.String(src)
	src = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, src)
	return trackJoint.ReplaceAllString(src, ",")
}

// Body returns the comma-separated track text between MML@ and ;.
func Body(src string) (string, error) {
	src = Clean(src)
	if src == "" {
		return "", ErrEmptyInput
	}
	if len(src) < 5 || !strings.EqualFold(src[:4], "mml@") || !strings.HasSuffix(src, ";") {
		return "", ErrMalformedInput
	}
	return src[4 : len(src)-1], nil
}

// Parse reads an envelope document into annotated tracks. Track text is
// lower-cased; an empty segment still yields an empty track.
func Parse(src string) (*Document, error) {
	body, err := Body(src)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(body, ",")
	doc := &Document{Tracks: make([]Track, len(parts))}
	for i, part := range parts {
		doc.Tracks[i] = ParseTrack(strings.ToLower(part))
	}
	return doc, nil
}

// Validate reports characters the engine would not accept. Track
// separators and the envelope are not checked here.
func Validate(src string) error {
	body, err := Body(src)
	if err != nil {
		return err
	}
	seen := map[rune]bool{}
	for _, r := range strings.ToLower(body) {
		if r == ',' || strings.ContainsRune(validChars, r) {
			continue
		}
		seen[r] = true
	}
	if len(seen) == 0 {
		return nil
	}
	bad := make([]rune, 0, len(seen))
	for r := range seen {
		bad = append(bad, r)
	}
	sort.Slice(bad, func(i, j int) bool { return bad[i] < bad[j] })
	return &InvalidCharsError{Chars: bad}
}
