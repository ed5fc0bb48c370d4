package textframe

import "fmt"

// resolveRange converts a possibly end-relative range into absolute,
// bounds-checked offsets. The same rules apply to character offsets and
// line numbers:
//
//   - A non-negative value is an absolute offset.
//   - A negative value v means total+v, relative to the end.
//   - An end of exactly 0 means total, so (0,0) denotes everything and
//     (-10,0) the last ten units.
//
// Negative values are resolved before any boundary check: a value that
// resolves below zero fails with ErrOutOfBounds rather than clamping.
// Ranges are end-exclusive.
func resolveRange(begin, end, total int64) (int64, int64, error) {
	reqBegin, reqEnd := begin, end
	if begin < 0 {
		begin += total
	}
	switch {
	case end == 0:
		end = total
	case end < 0:
		end += total
	}
	if begin < 0 || end < 0 || begin > total || end > total {
		return 0, 0, fmt.Errorf("%w: (%d,%d) resolved to (%d,%d) of %d", ErrOutOfBounds, reqBegin, reqEnd, begin, end, total)
	}
	if begin > end {
		return 0, 0, fmt.Errorf("%w: (%d,%d) resolved to (%d,%d)", ErrInvertedRange, reqBegin, reqEnd, begin, end)
	}
	return begin, end, nil
}
