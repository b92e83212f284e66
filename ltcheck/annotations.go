package ltcheck

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DataAnnotation is one atomic span of an annotated document: either plain
// text to be checked, or markup to be skipped.  Markup may carry an
// interpretation that the server substitutes for it (e.g. "<p>" read as
// "\n\n").  Exactly one of Text and Markup must be set.
type DataAnnotation struct {
	Text        *string `json:"text,omitempty"`
	Markup      *string `json:"markup,omitempty"`
	InterpretAs *string `json:"interpretAs,omitempty"`
}

// NewText returns an annotation holding checkable text.
func NewText(text string) DataAnnotation {
	return DataAnnotation{Text: &text}
}

// NewMarkup returns an annotation holding ignorable markup.
func NewMarkup(markup string) DataAnnotation {
	return DataAnnotation{Markup: &markup}
}

// NewInterpretedMarkup returns a markup annotation checked as interpretAs.
func NewInterpretedMarkup(markup, interpretAs string) DataAnnotation {
	return DataAnnotation{Markup: &markup, InterpretAs: &interpretAs}
}

// TryGetText returns the text or markup field of the annotation.
func (a DataAnnotation) TryGetText() (string, error) {
	switch {
	case a.Text != nil:
		return *a.Text, nil
	case a.Markup != nil:
		return *a.Markup, nil
	default:
		return "", fmt.Errorf("%w: empty annotation", ErrMissingInput)
	}
}

// length is the annotation's contribution to the document's effective text.
func (a DataAnnotation) length() int {
	n := 0
	if a.Text != nil {
		n += len(*a.Text)
	}
	if a.Markup != nil {
		n += len(*a.Markup)
	}
	return n
}

// Data is an annotated document: an ordered sequence of atomic spans whose
// order defines textual order.
type Data struct {
	Annotation []DataAnnotation `json:"annotation"`
}

// ParseData decodes a JSON document of the form
// {"annotation":[{"text":"A "},{"markup":"<b>"}]}.
func ParseData(s string) (*Data, error) {
	var d Data
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil, fmt.Errorf("ltcheck: invalid data annotations: %w", err)
	}
	return &d, nil
}

// EffectiveText concatenates each annotation's text or markup in order.
// This is the text the server computes offsets against.
func (d *Data) EffectiveText() (string, error) {
	var b strings.Builder
	for _, a := range d.Annotation {
		s, err := a.TryGetText()
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// Split divides the document into as few documents as possible, each
// holding (if possible) at most n bytes of text plus markup.  Cuts happen
// only between annotations, and only after a text annotation containing
// pat, so no annotation is ever divided.
//
// With fewer than two such candidate cut points the document is returned
// whole, even if it exceeds n: callers needing smaller documents must pick
// a pattern that occurs often enough in the checkable text.
func (d *Data) Split(n int, pat string) []*Data {
	// Candidate breakpoints: annotation index plus cumulative length of
	// the effective text up to and including that annotation.
	type breakPoint struct{ index, length int }
	var candidates []breakPoint
	length := 0
	for i, a := range d.Annotation {
		length += a.length()
		if a.Text != nil && strings.Contains(*a.Text, pat) {
			candidates = append(candidates, breakPoint{i, length})
		}
	}

	// Accept a candidate as a cut as soon as extending past the next one
	// would exceed n.
	var cuts []int
	if len(candidates) > 1 {
		base, curr := 0, 0
		for i, ii := 0, 1; ii < len(candidates); i, ii = i+1, ii+1 {
			curr += candidates[i].length - base
			if candidates[ii].length-base+curr > n {
				cuts = append(cuts, candidates[i].index)
				base = candidates[i].length
				curr = 0
			}
		}
	}

	if len(cuts) == 0 {
		return []*Data{d}
	}

	// Materialize by slicing the annotation sequence strictly after each
	// cut annotation; the tail past the last cut is kept as the final
	// document so that no content is lost.
	split := make([]*Data, 0, len(cuts)+1)
	start := 0
	for _, cut := range cuts {
		split = append(split, &Data{Annotation: d.Annotation[start : cut+1]})
		start = cut + 1
	}
	if start < len(d.Annotation) {
		split = append(split, &Data{Annotation: d.Annotation[start:]})
	}
	return split
}

// MarshalJSON keeps the wire shape {"annotation":[...]} stable even for a
// nil annotation slice.
func (d Data) MarshalJSON() ([]byte, error) {
	type alias Data
	a := alias(d)
	if a.Annotation == nil {
		a.Annotation = []DataAnnotation{}
	}
	return json.Marshal(a)
}
