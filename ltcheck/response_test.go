package ltcheck

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func matchAt(offset, length int) Match {
	return Match{Offset: offset, Length: length, Rule: Rule{ID: "TYPO"}}
}

func respWith(text string, matches ...Match) ResponseWithContext {
	return NewResponseWithContext(text, CheckResponse{Matches: matches})
}

func TestNewResponseWithContext_CountsRunes(t *testing.T) {
	rc := respWith("héllo\n자모")
	if rc.TextLength != 8 {
		t.Fatalf("TextLength = %d, want 8", rc.TextLength)
	}
}

func TestAppend_ShiftsOffsets(t *testing.T) {
	a := respWith("Some phrase with a smal mistake.\n", matchAt(19, 4))
	b := respWith("i can drive a car", matchAt(0, 1))

	joined := a.Append(b)

	if got := joined.Text; got != "Some phrase with a smal mistake.\ni can drive a car" {
		t.Fatalf("text = %q", got)
	}
	if joined.TextLength != 33+17 {
		t.Fatalf("TextLength = %d, want %d", joined.TextLength, 33+17)
	}
	offsets := []int{joined.Response.Matches[0].Offset, joined.Response.Matches[1].Offset}
	if !reflect.DeepEqual(offsets, []int{19, 33}) {
		t.Fatalf("offsets = %v, want [19 33]", offsets)
	}

	// the left side's matches are untouched
	if a.Response.Matches[0].Offset != 19 {
		t.Fatalf("left offset mutated: %d", a.Response.Matches[0].Offset)
	}
}

func TestAppend_ShiftsSentenceRanges(t *testing.T) {
	a := respWith("One sentence. Two sentence.\n")
	a.Response.SentenceRanges = [][2]int{{0, 13}, {14, 27}}
	b := respWith("Three sentence.")
	b.Response.SentenceRanges = [][2]int{{0, 15}}

	joined := a.Append(b)

	want := [][2]int{{0, 13}, {14, 27}, {28, 43}}
	if !reflect.DeepEqual(joined.Response.SentenceRanges, want) {
		t.Fatalf("sentence ranges = %v, want %v", joined.Response.SentenceRanges, want)
	}
}

func TestJoinResponses(t *testing.T) {
	a := respWith("aaaa\n", matchAt(0, 2))
	b := respWith("bbb\n", matchAt(1, 1))
	c := respWith("cc\n", matchAt(2, 1))

	joined, err := JoinResponses([]ResponseWithContext{a, b, c})
	if err != nil {
		t.Fatal(err)
	}

	// identical to an explicit left fold
	direct := a.Append(b).Append(c)
	if !reflect.DeepEqual(joined, direct) {
		t.Fatal("fold differs from explicit Append chain")
	}

	offsets := make([]int, len(joined.Response.Matches))
	for i, m := range joined.Response.Matches {
		offsets[i] = m.Offset
	}
	if !reflect.DeepEqual(offsets, []int{0, 6, 11}) {
		t.Fatalf("offsets = %v, want [0 6 11]", offsets)
	}

	// reordering is not order-preserving and must change offsets
	reordered, err := JoinResponses([]ResponseWithContext{b, a, c})
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(reordered, joined) {
		t.Fatal("append must not be commutative")
	}
}

func TestJoinResponses_Degenerate(t *testing.T) {
	single := respWith("just one\n", matchAt(5, 3))
	joined, err := JoinResponses([]ResponseWithContext{single})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(joined, single) {
		t.Fatal("single element must be returned unchanged")
	}

	if _, err := JoinResponses(nil); !errors.Is(err, ErrNoRequests) {
		t.Fatalf("err = %v, want ErrNoRequests", err)
	}
}

func TestMatchPositions(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		offsets []int
		want    [][2]int // lineNumber, lineOffset
	}{
		{
			"two lines",
			"Some phrase with a smal mistake.\ni can drive a car",
			[]int{19, 33},
			[][2]int{{1, 19}, {2, 0}},
		},
		{
			"mid line",
			"Some phrase with\na smal mistake. i can\ndrive a car",
			[]int{19, 33},
			[][2]int{{2, 2}, {2, 16}},
		},
		{
			"blank lines",
			"  Some phrase with a smal\nmistake.\n\n  i can drive a car",
			[]int{0, 21, 36, 38},
			[][2]int{{1, 0}, {1, 21}, {4, 0}, {4, 2}},
		},
		{
			"repeat",
			"Some phrase with a smal mistake.\ni can drive a car\nSome phrase with a smal mistake.",
			[]int{19, 33, 70},
			[][2]int{{1, 19}, {2, 0}, {3, 19}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			matches := make([]Match, len(tc.offsets))
			for i, off := range tc.offsets {
				matches[i] = matchAt(off, 4)
			}
			rc := respWith(tc.text, matches...)

			got := rc.MatchPositions(1)
			if len(got) != len(tc.want) {
				t.Fatalf("positions = %d, want %d", len(got), len(tc.want))
			}
			for i, p := range got {
				if p.LineNumber != tc.want[i][0] || p.LineOffset != tc.want[i][1] {
					t.Fatalf("position %d = (%d,%d), want (%d,%d)",
						i, p.LineNumber, p.LineOffset, tc.want[i][0], tc.want[i][1])
				}
			}
		})
	}
}

func TestMatchPositions_Monotonic(t *testing.T) {
	text := strings.Repeat("a word or two here\nand some more after\n", 20)
	var matches []Match
	for off := 0; off < 700; off += 37 {
		matches = append(matches, matchAt(off, 1))
	}
	rc := respWith(text, matches...)

	prevLine, prevCol := 0, -1
	for _, p := range rc.MatchPositions(1) {
		if p.LineNumber < prevLine {
			t.Fatalf("line numbers must not decrease: %d after %d", p.LineNumber, prevLine)
		}
		if p.LineNumber == prevLine && p.LineOffset < prevCol {
			t.Fatalf("line offsets must not decrease within a line: %d after %d", p.LineOffset, prevCol)
		}
		prevLine, prevCol = p.LineNumber, p.LineOffset
	}
}

func TestMatchPositions_StartLine(t *testing.T) {
	rc := respWith("first\nsecond", matchAt(6, 6))
	got := rc.MatchPositions(10)
	if got[0].LineNumber != 11 || got[0].LineOffset != 0 {
		t.Fatalf("position = (%d,%d), want (11,0)", got[0].LineNumber, got[0].LineOffset)
	}
}

func TestMatchPositions_TextTooShortPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("want panic when text is shorter than a match offset")
		}
	}()
	rc := respWith("short", matchAt(50, 1))
	rc.MatchPositions(1)
}

func TestIntoResponse_AttachesMoreContext(t *testing.T) {
	a := respWith("Some phrase with a smal mistake.\n", matchAt(19, 4))
	b := respWith("i can drive a car", matchAt(0, 1))

	resp := a.Append(b).IntoResponse()

	mc0, mc1 := resp.Matches[0].MoreContext, resp.Matches[1].MoreContext
	if mc0 == nil || mc1 == nil {
		t.Fatal("matches must carry MoreContext after IntoResponse")
	}
	if mc0.LineNumber != 1 || mc0.LineOffset != 19 {
		t.Fatalf("first match at (%d,%d), want (1,19)", mc0.LineNumber, mc0.LineOffset)
	}
	if mc1.LineNumber != 2 || mc1.LineOffset != 0 {
		t.Fatalf("second match at (%d,%d), want (2,0)", mc1.LineNumber, mc1.LineOffset)
	}
}
