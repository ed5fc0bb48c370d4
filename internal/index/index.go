// Package index builds and resolves the character-offset index of a
// UTF-8 text file.
//
// The index is a sparse sequence of checkpoints sampled every
// granularity characters during a single streaming scan, plus optional
// per-line start offsets and a content digest accumulated over the raw
// bytes in the same pass. Resolving a character offset binary-searches
// the checkpoints and decodes forward from the nearest one, so lookup
// work is bounded by the granularity regardless of file size.
package index

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"unicode/utf8"

	_ "crypto/sha256" // registers SHA-256 with go-digest

	"github.com/opencontainers/go-digest"
)

// DefaultGranularity is the checkpoint stride in characters.
const DefaultGranularity = 4096

const scanBufSize = 64 * 1024

// Checkpoint is a sampled (character offset, byte offset) pair.
// Both fields are strictly increasing across the sequence.
type Checkpoint struct {
	Char int64
	Byte int64
}

// LineStart records where a line begins, in characters and bytes.
type LineStart struct {
	Char int64
	Byte int64
}

// Index maps character offsets and line numbers to byte offsets of one
// immutable text file. It is built once and never mutated, so it can be
// shared across handles without locking.
type Index struct {
	granularity int64
	charSize    int64
	byteSize    int64
	dgst        digest.Digest
	checkpoints []Checkpoint
	lines       []LineStart
	hasLines    bool
}

// Build scans r once, decoding it as UTF-8 and accumulating checkpoints,
// line starts (when withLines is set), totals, and the content digest.
//
// Build fails with ErrEmptyText when r yields no bytes and with an
// EncodingError at the first byte sequence that is not valid UTF-8.
func Build(r io.Reader, granularity int64, withLines bool) (*Index, error) {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}
	digester := digest.SHA256.Digester()
	br := bufio.NewReaderSize(io.TeeReader(r, digester.Hash()), scanBufSize)

	idx := &Index{granularity: granularity, hasLines: withLines}
	var charPos, bytePos int64
	atLineStart := true
	for {
		ch, size, err := br.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if ch == utf8.RuneError && size == 1 {
			return nil, &EncodingError{ByteOffset: bytePos}
		}
		if charPos%granularity == 0 {
			idx.checkpoints = append(idx.checkpoints, Checkpoint{Char: charPos, Byte: bytePos})
		}
		if withLines && atLineStart {
			idx.lines = append(idx.lines, LineStart{Char: charPos, Byte: bytePos})
			atLineStart = false
		}
		if ch == '\n' {
			atLineStart = true
		}
		charPos++
		bytePos += int64(size)
	}
	if bytePos == 0 {
		return nil, ErrEmptyText
	}
	idx.charSize = charPos
	idx.byteSize = bytePos
	idx.dgst = digester.Digest()
	return idx, nil
}

// Granularity returns the checkpoint stride in characters.
func (idx *Index) Granularity() int64 { return idx.granularity }

// CharSize returns the length of the text in characters.
func (idx *Index) CharSize() int64 { return idx.charSize }

// ByteSize returns the length of the text in bytes.
func (idx *Index) ByteSize() int64 { return idx.byteSize }

// Digest returns the content digest of the source file.
func (idx *Index) Digest() digest.Digest { return idx.dgst }

// HasLines reports whether a line index was built.
func (idx *Index) HasLines() bool { return idx.hasLines }

// CheckpointCount returns the number of checkpoints.
func (idx *Index) CheckpointCount() int { return len(idx.checkpoints) }

// LineCount returns the number of lines. A line includes its trailing
// terminator; a trailing terminator does not open a final empty line.
func (idx *Index) LineCount() int64 { return int64(len(idx.lines)) }

// LineByte returns the byte offset where line n begins. n may equal
// LineCount, in which case the end of the text is returned.
func (idx *Index) LineByte(n int64) int64 {
	if n == int64(len(idx.lines)) {
		return idx.byteSize
	}
	return idx.lines[n].Byte
}

// LineChar returns the character offset where line n begins. n may
// equal LineCount, in which case the character length is returned.
func (idx *Index) LineChar(n int64) int64 {
	if n == int64(len(idx.lines)) {
		return idx.charSize
	}
	return idx.lines[n].Char
}

// ByteOffset resolves a character offset to its byte offset, reading at
// most one checkpoint window from src to decode forward. The offset
// must be within [0, CharSize]; src must be the file the index was
// built from.
func (idx *Index) ByteOffset(src io.ReaderAt, charOff int64) (int64, error) {
	if charOff < 0 || charOff > idx.charSize {
		return 0, fmt.Errorf("%w: character offset %d (total %d)", ErrOutOfBounds, charOff, idx.charSize)
	}
	if charOff == idx.charSize {
		return idx.byteSize, nil
	}

	// Greatest checkpoint at or before charOff. Checkpoint 0 is always
	// (0,0), so the search never lands before the first entry.
	i := sort.Search(len(idx.checkpoints), func(i int) bool {
		return idx.checkpoints[i].Char > charOff
	}) - 1
	cp := idx.checkpoints[i]
	if cp.Char == charOff {
		return cp.Byte, nil
	}

	windowEnd := idx.byteSize
	if i+1 < len(idx.checkpoints) {
		windowEnd = idx.checkpoints[i+1].Byte
	}
	buf := make([]byte, windowEnd-cp.Byte)
	n, err := src.ReadAt(buf, cp.Byte)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
		return 0, err
	}

	var off int64
	for c := cp.Char; c < charOff; c++ {
		ch, size := utf8.DecodeRune(buf[off:])
		if ch == utf8.RuneError && size <= 1 {
			return 0, &EncodingError{ByteOffset: cp.Byte + off}
		}
		off += int64(size)
	}
	return cp.Byte + off, nil
}
