package index

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const asciiText = "Article 1\n\nAll human beings are born free and equal in dignity and rights.\n"

const unicodeText = "第一条\n人人生而自由,在尊严和权利上一律平等。\n第二条\n"

// byteOffAt returns the byte offset of character i in s, computed by an
// independent reference decode.
func byteOffAt(s string, i int) int64 {
	return int64(len(string([]rune(s)[:i])))
}

func mustBuild(tb testing.TB, text string, granularity int64, withLines bool) *Index {
	tb.Helper()
	idx, err := Build(strings.NewReader(text), granularity, withLines)
	require.NoError(tb, err, "Build failed")
	return idx
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("ascii totals", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, asciiText, 0, true)
		assert.Equal(t, int64(len(asciiText)), idx.CharSize())
		assert.Equal(t, int64(len(asciiText)), idx.ByteSize())
	})

	t.Run("unicode totals", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, unicodeText, 0, true)
		assert.Equal(t, int64(utf8.RuneCountInString(unicodeText)), idx.CharSize())
		assert.Equal(t, int64(len(unicodeText)), idx.ByteSize())
	})

	t.Run("checkpoint stride", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, unicodeText, 4, false)
		chars := utf8.RuneCountInString(unicodeText)
		want := (chars + 3) / 4
		assert.Equal(t, want, idx.CheckpointCount())
		for i, cp := range idx.checkpoints {
			assert.Equal(t, int64(i*4), cp.Char)
			assert.Equal(t, byteOffAt(unicodeText, i*4), cp.Byte)
		}
	})

	t.Run("first checkpoint at origin", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, asciiText, 0, false)
		require.NotZero(t, idx.CheckpointCount())
		assert.Equal(t, Checkpoint{}, idx.checkpoints[0])
	})

	t.Run("line starts", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, "a\nb\nc\n", 0, true)
		assert.Equal(t, int64(3), idx.LineCount())
		assert.Equal(t, int64(0), idx.LineByte(0))
		assert.Equal(t, int64(2), idx.LineByte(1))
		assert.Equal(t, int64(4), idx.LineByte(2))
		assert.Equal(t, int64(6), idx.LineByte(3)) // end sentinel
	})

	t.Run("line start chars", func(t *testing.T) {
		t.Parallel()
		// Multi-byte characters make char and byte offsets diverge.
		idx := mustBuild(t, "第一条\nab\n", 0, true)
		assert.Equal(t, int64(2), idx.LineCount())
		assert.Equal(t, int64(0), idx.LineChar(0))
		assert.Equal(t, int64(4), idx.LineChar(1))
		assert.Equal(t, int64(7), idx.LineChar(2)) // end sentinel
		assert.Equal(t, int64(10), idx.LineByte(1))
	})

	t.Run("no trailing terminator", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, "a\nb", 0, true)
		assert.Equal(t, int64(2), idx.LineCount())
		assert.Equal(t, int64(2), idx.LineByte(1))
		assert.Equal(t, int64(3), idx.LineByte(2))
	})

	t.Run("lines disabled", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, "a\nb\n", 0, false)
		assert.False(t, idx.HasLines())
		assert.Equal(t, int64(0), idx.LineCount())
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, err := Build(strings.NewReader(""), 0, true)
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		t.Parallel()
		_, err := Build(bytes.NewReader([]byte("abc\xff\xfedef")), 0, true)
		require.ErrorIs(t, err, ErrInvalidEncoding)
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, int64(3), encErr.ByteOffset)
	})

	t.Run("digest matches whole-buffer digest", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, unicodeText, 0, true)
		assert.Equal(t, digest.FromBytes([]byte(unicodeText)), idx.Digest())
	})
}

func TestByteOffset(t *testing.T) {
	t.Parallel()

	t.Run("every offset matches reference", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, unicodeText, 4, false)
		src := bytes.NewReader([]byte(unicodeText))
		chars := utf8.RuneCountInString(unicodeText)
		for i := 0; i <= chars; i++ {
			got, err := idx.ByteOffset(src, int64(i))
			require.NoError(t, err, "offset %d", i)
			assert.Equal(t, byteOffAt(unicodeText, i), got, "offset %d", i)
		}
	})

	t.Run("end of text", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, asciiText, 0, false)
		got, err := idx.ByteOffset(bytes.NewReader([]byte(asciiText)), idx.CharSize())
		require.NoError(t, err)
		assert.Equal(t, idx.ByteSize(), got)
	})

	t.Run("out of bounds", func(t *testing.T) {
		t.Parallel()
		idx := mustBuild(t, asciiText, 0, false)
		src := bytes.NewReader([]byte(asciiText))
		_, err := idx.ByteOffset(src, idx.CharSize()+1)
		assert.ErrorIs(t, err, ErrOutOfBounds)
		_, err = idx.ByteOffset(src, -1)
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})
}

func TestByteOffsetReadFailure(t *testing.T) {
	t.Parallel()

	idx := mustBuild(t, unicodeText, 4, false)
	// A source shorter than the index was built from forces a read error
	// on the forward decode path.
	_, err := idx.ByteOffset(bytes.NewReader([]byte("xy")), 6)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrOutOfBounds))
}
