package index

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyText is returned when the source file contains no bytes.
	ErrEmptyText = errors.New("textframe: text is empty")

	// ErrInvalidEncoding is returned when the source is not valid UTF-8.
	ErrInvalidEncoding = errors.New("textframe: invalid UTF-8")

	// ErrOutOfBounds is returned when an offset resolves outside the text.
	ErrOutOfBounds = errors.New("textframe: out of bounds")
)

// EncodingError reports the byte offset of the first malformed UTF-8
// sequence encountered during a scan or frame validation.
type EncodingError struct {
	ByteOffset int64
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("textframe: invalid UTF-8 at byte %d", e.ByteOffset)
}

func (e *EncodingError) Unwrap() error {
	return ErrInvalidEncoding
}
