package textframe

import (
	"slices"
	"sort"
	"unicode/utf8"
)

// frame is an immutable excerpt of the source file covering the byte
// range [begin, end), which always falls on character boundaries. The
// backing string is independently allocated and never mutated or
// released while the owning TextFile exists, so substrings handed to
// callers stay valid as more frames are loaded.
type frame struct {
	begin int64
	end   int64
	// charBegin is the character offset of begin, with charLen the
	// number of characters in text. charBegin is -1 when the frame was
	// loaded by byte range and its character position is unknown.
	charBegin int64
	charLen   int64
	text      string
}

// slice returns the text of the byte range [begin, end), which must be
// contained in the frame.
func (f *frame) slice(begin, end int64) string {
	return f.text[begin-f.begin : end-f.begin]
}

// sliceChars returns the text of the character range [begin, end),
// which must be contained in the frame. Cost is linear in the offset
// of end within the frame.
func (f *frame) sliceChars(begin, end int64) string {
	lo := advanceChars(f.text, begin-f.charBegin)
	hi := lo + advanceChars(f.text[lo:], end-begin)
	return f.text[lo:hi]
}

// boundary reports whether the absolute byte offset off, which must be
// within [f.begin, f.end], falls on a character boundary. Frame edges
// are boundaries by construction.
func (f *frame) boundary(off int64) bool {
	if off == f.end {
		return true
	}
	return utf8.RuneStart(f.text[off-f.begin])
}

// anchor back-fills the character position of a frame loaded by byte
// range, given the character offset charOff of the absolute byte
// offset off inside it. Callers hold the owning TextFile's write lock.
func (f *frame) anchor(off, charOff int64) {
	f.charBegin = charOff - int64(utf8.RuneCountInString(f.text[:off-f.begin]))
	f.charLen = int64(utf8.RuneCountInString(f.text))
}

// advanceChars returns the byte offset after the first n characters
// of s.
func advanceChars(s string, n int64) int {
	var off int
	for ; n > 0; n-- {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}

// frameStore holds loaded frames in insertion order plus a begin-offset
// ordering for lookups. Frames may overlap and are never merged, moved,
// or evicted; the trade-off buys permanently valid references and O(1)
// append at the cost of possibly redundant memory.
type frameStore struct {
	frames []*frame
	order  []int // indices into frames, sorted by begin offset
}

// frameCovering returns an already-loaded frame fully containing the
// byte range [begin, end). Candidates are scanned backwards from the
// last frame starting at or before begin.
func (s *frameStore) frameCovering(begin, end int64) (*frame, bool) {
	i := sort.Search(len(s.order), func(i int) bool {
		return s.frames[s.order[i]].begin > begin
	})
	for j := i - 1; j >= 0; j-- {
		f := s.frames[s.order[j]]
		if f.end >= end {
			return f, true
		}
	}
	return nil, false
}

// covering returns the text of the byte range [begin, end) when an
// already-loaded frame fully contains it.
func (s *frameStore) covering(begin, end int64) (string, bool) {
	f, ok := s.frameCovering(begin, end)
	if !ok {
		return "", false
	}
	return f.slice(begin, end), true
}

// coveringChars returns the text of the character range [begin, end)
// when an already-loaded frame with a known character position fully
// contains it. Frames loaded by byte range carry no character anchor
// and are skipped.
func (s *frameStore) coveringChars(begin, end int64) (string, bool) {
	for _, f := range s.frames {
		if f.charBegin < 0 || begin < f.charBegin || end > f.charBegin+f.charLen {
			continue
		}
		return f.sliceChars(begin, end), true
	}
	return "", false
}

// add registers a new frame.
func (s *frameStore) add(f *frame) {
	s.frames = append(s.frames, f)
	i := sort.Search(len(s.order), func(i int) bool {
		return s.frames[s.order[i]].begin > f.begin
	})
	s.order = slices.Insert(s.order, i, len(s.frames)-1)
}

// len returns the number of loaded frames.
func (s *frameStore) len() int {
	return len(s.frames)
}
