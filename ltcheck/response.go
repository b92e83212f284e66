package ltcheck

import (
	"fmt"
	"unicode/utf8"
)

// DetectedLanguage is the server's guess for the request's language.
type DetectedLanguage struct {
	// Code, e.g. "sk-SK".
	Code string `json:"code"`
	// Confidence level, from 0 to 1.
	Confidence float64 `json:"confidence,omitempty"`
	// Name, e.g. "Slovak".
	Name string `json:"name"`
	// Source (file) for the language detection.
	Source string `json:"source,omitempty"`
}

// LanguageResponse is the language block of a check response.
type LanguageResponse struct {
	Code             string           `json:"code"`
	DetectedLanguage DetectedLanguage `json:"detectedLanguage"`
	Name             string           `json:"name"`
}

// Context is the text surrounding a match, with the match located by an
// offset and length local to this snippet.  Display only.
type Context struct {
	Length int    `json:"length"`
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// MoreContext locates a match in line/column terms.  Absent until the
// position mapper has run; line numbers start at 1, line offsets at 0.
type MoreContext struct {
	LineNumber int `json:"lineNumber"`
	LineOffset int `json:"lineOffset"`
}

// Replacement is one suggested substitution for a match.
type Replacement struct {
	Value string `json:"value"`
}

// Category groups related rules.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// URL points at external documentation for a rule.
type URL struct {
	Value string `json:"value"`
}

// Rule identifies the check a match violated.
type Rule struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
	ID          string   `json:"id"`
	IssueType   string   `json:"issueType"`
	SubID       string   `json:"subId,omitempty"`
	URLs        []URL    `json:"urls,omitempty"`
}

// Match is one flagged issue.  Offset counts characters into the text of
// the request that produced it; after JoinResponses it counts into the
// full original document.
type Match struct {
	Context      Context       `json:"context"`
	Length       int           `json:"length"`
	Message      string        `json:"message"`
	MoreContext  *MoreContext  `json:"moreContext,omitempty"`
	Offset       int           `json:"offset"`
	Replacements []Replacement `json:"replacements"`
	Rule         Rule          `json:"rule"`
	Sentence     string        `json:"sentence"`
	ShortMessage string        `json:"shortMessage"`
}

// Software describes the server implementation.
type Software struct {
	APIVersion int    `json:"apiVersion"`
	BuildDate  string `json:"buildDate"`
	Name       string `json:"name"`
	Premium    bool   `json:"premium"`
	Status     string `json:"status"`
	Version    string `json:"version"`
}

// Warnings carries server-side caveats about a response.
type Warnings struct {
	IncompleteResults bool `json:"incompleteResults"`
}

// CheckResponse is a POST /v2/check response.
type CheckResponse struct {
	Language LanguageResponse `json:"language"`
	Matches  []Match          `json:"matches"`
	// SentenceRanges are [start, end) character ranges of detected
	// sentences in the checked text.
	SentenceRanges [][2]int  `json:"sentenceRanges,omitempty"`
	Software       Software  `json:"software"`
	Warnings       *Warnings `json:"warnings,omitempty"`
}

// ResponseWithContext pairs a check response with the exact text it was
// computed against.  The pairing is what makes offset adjustment on append
// and offset-to-position mapping possible.
type ResponseWithContext struct {
	// Text the response's offsets refer to.
	Text string
	// Response as returned by the server, offsets possibly re-based by
	// Append.
	Response CheckResponse
	// TextLength is Text's length in runes, the unit match offsets are
	// counted in.
	TextLength int
}

// NewResponseWithContext binds a check response to its original text.
func NewResponseWithContext(text string, resp CheckResponse) ResponseWithContext {
	return ResponseWithContext{
		Text:       text,
		Response:   resp,
		TextLength: utf8.RuneCountInString(text),
	}
}

// Append combines the receiver with a response computed from the text that
// directly follows the receiver's.  Offsets and sentence ranges of other
// are shifted into the combined coordinate space.  Not commutative: the
// receiver is logically first.
func (rc ResponseWithContext) Append(other ResponseWithContext) ResponseWithContext {
	offset := rc.TextLength

	matches := make([]Match, 0, len(rc.Response.Matches)+len(other.Response.Matches))
	matches = append(matches, rc.Response.Matches...)
	for _, m := range other.Response.Matches {
		m.Offset += offset
		matches = append(matches, m)
	}
	rc.Response.Matches = matches

	// Sentence ranges are character ranges into each side's own text, so
	// the right side needs the same shift as match offsets.
	if len(other.Response.SentenceRanges) > 0 {
		ranges := make([][2]int, 0,
			len(rc.Response.SentenceRanges)+len(other.Response.SentenceRanges))
		ranges = append(ranges, rc.Response.SentenceRanges...)
		for _, sr := range other.Response.SentenceRanges {
			ranges = append(ranges, [2]int{sr[0] + offset, sr[1] + offset})
		}
		rc.Response.SentenceRanges = ranges
	}

	rc.Text += other.Text
	rc.TextLength += other.TextLength
	return rc
}

// JoinResponses folds partial results into one, in the order given, which
// must be the original fragment order.  A single element is returned
// unchanged; zero elements is ErrNoRequests.
func JoinResponses(parts []ResponseWithContext) (ResponseWithContext, error) {
	if len(parts) == 0 {
		return ResponseWithContext{}, ErrNoRequests
	}
	joined := parts[0]
	for _, p := range parts[1:] {
		joined = joined.Append(p)
	}
	return joined, nil
}

// MatchPosition is a match located in line/column terms.
type MatchPosition struct {
	LineNumber int
	LineOffset int
	Match      *Match
}

// MatchPositions maps every match offset to a position by a single forward
// scan of the paired text, counting newlines.  Matches must be in
// non-decreasing offset order.  startLine overrides the first line number
// (1 for whole documents) so positions can stay file-global when the text
// is itself a slice of a larger file.
//
// Panics if the text is exhausted before some match offset: the text does
// not belong to this response, which is a caller bug, not a runtime
// condition to tolerate.
func (rc *ResponseWithContext) MatchPositions(startLine int) []MatchPosition {
	positions := make([]MatchPosition, 0, len(rc.Response.Matches))

	text := []rune(rc.Text)
	cursor := 0
	line, col := startLine, 0
	for i := range rc.Response.Matches {
		m := &rc.Response.Matches[i]
		if m.Offset > len(text) {
			panic(fmt.Sprintf(
				"ltcheck: text is shorter than match offset %d; are you sure this text was the one used for the check request?",
				m.Offset))
		}
		for ; cursor < m.Offset; cursor++ {
			if text[cursor] == '\n' {
				line++
				col = 0
			} else {
				col++
			}
		}
		positions = append(positions, MatchPosition{LineNumber: line, LineOffset: col, Match: m})
	}
	return positions
}

// IntoResponse annotates every match with its line/column position and
// unwraps the response.
func (rc ResponseWithContext) IntoResponse() CheckResponse {
	for _, p := range rc.MatchPositions(1) {
		mc := MoreContext{LineNumber: p.LineNumber, LineOffset: p.LineOffset}
		p.Match.MoreContext = &mc
	}
	return rc.Response
}
