package textframe

import (
	"errors"

	"github.com/meigma/textframe/internal/index"
)

// Errors re-exported from the index scanner.
var (
	// ErrEmptyText is returned when the source file contains no bytes.
	ErrEmptyText = index.ErrEmptyText

	// ErrInvalidEncoding is returned when the source is not valid UTF-8.
	ErrInvalidEncoding = index.ErrInvalidEncoding

	// ErrOutOfBounds is returned when an offset resolves outside the text.
	ErrOutOfBounds = index.ErrOutOfBounds
)

// EncodingError reports the byte offset of the first malformed UTF-8
// sequence. It unwraps to ErrInvalidEncoding.
type EncodingError = index.EncodingError

var (
	// ErrInvertedRange is returned when a resolved range begin exceeds its end.
	ErrInvertedRange = errors.New("textframe: range begin exceeds end")

	// ErrLineOutOfBounds is returned when a line number resolves outside the text.
	ErrLineOutOfBounds = errors.New("textframe: line out of bounds")

	// ErrNoLineIndex is returned when a line operation is requested on a
	// TextFile opened without a line index.
	ErrNoLineIndex = errors.New("textframe: no line index enabled")

	// ErrMisalignedOffset is returned when a byte-indexed access does not
	// fall on a character boundary.
	ErrMisalignedOffset = errors.New("textframe: byte offset not on a character boundary")

	// ErrNotLoaded is returned by the non-loading accessors when no loaded
	// frame covers the requested range.
	ErrNotLoaded = errors.New("textframe: range not loaded")
)
