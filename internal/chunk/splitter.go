package chunk

import "strings"

// SplitLen slices s into as few fragments as possible, each below n bytes
// when avoidable.  Cuts happen only after an occurrence of pat, which is
// kept as the suffix of the segment it terminates, so joining the fragments
// reproduces s byte-for-byte.  ZERO copies, 1 slice alloc.
//
// The limit is a target, not a ceiling: a single pat-delimited segment
// longer than n is emitted whole.  Empty input yields no fragments; if pat
// never occurs, the whole input is one fragment.
func SplitLen(s string, n int, pat string) []string {
	if s == "" {
		return nil
	}
	if pat == "" || n <= 0 {
		return []string{s}
	}

	res := make([]string, 0, len(s)/n+1)

	start, cur := 0, 0
	for begin := 0; begin < len(s); {
		seg := len(s) - begin
		if i := strings.Index(s[begin:], pat); i >= 0 {
			seg = i + len(pat)
		}
		if cur == 0 || cur+seg < n {
			cur += seg
		} else {
			res = append(res, s[start:start+cur])
			start += cur
			cur = seg
		}
		begin += seg
	}
	// trailing fragment (never empty because s is non-empty)
	return append(res, s[start:start+cur])
}
