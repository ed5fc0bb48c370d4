package textframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameStore(t *testing.T) {
	t.Parallel()

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		_, ok := s.covering(0, 10)
		assert.False(t, ok)
	})

	t.Run("exact hit", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		s.add(&frame{begin: 10, end: 20, text: "0123456789"})
		text, ok := s.covering(10, 20)
		require.True(t, ok)
		assert.Equal(t, "0123456789", text)
	})

	t.Run("interior hit", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		s.add(&frame{begin: 10, end: 20, text: "0123456789"})
		text, ok := s.covering(12, 15)
		require.True(t, ok)
		assert.Equal(t, "234", text)
	})

	t.Run("partial overlap misses", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		s.add(&frame{begin: 0, end: 10, text: "0123456789"})
		_, ok := s.covering(5, 15)
		assert.False(t, ok)
	})

	t.Run("before first frame misses", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		s.add(&frame{begin: 10, end: 20, text: "0123456789"})
		_, ok := s.covering(5, 15)
		assert.False(t, ok)
	})

	t.Run("overlapping frames both serve", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		s.add(&frame{begin: 0, end: 10, text: "abcdefghij"})
		s.add(&frame{begin: 5, end: 15, text: "fghijklmno"})
		require.Equal(t, 2, s.len())

		text, ok := s.covering(0, 10)
		require.True(t, ok)
		assert.Equal(t, "abcdefghij", text)

		text, ok = s.covering(8, 12)
		require.True(t, ok)
		assert.Equal(t, "ijkl", text)
	})

	t.Run("same begin different lengths", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		s.add(&frame{begin: 0, end: 3, text: "abc"})
		s.add(&frame{begin: 0, end: 6, text: "abcdef"})
		text, ok := s.covering(2, 6)
		require.True(t, ok)
		assert.Equal(t, "cdef", text)
	})

	t.Run("later frame found via backwards scan", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		s.add(&frame{begin: 0, end: 4, text: "abcd"})
		s.add(&frame{begin: 2, end: 4, text: "cd"})
		s.add(&frame{begin: 0, end: 20, text: "abcdefghijklmnopqrst"})
		text, ok := s.covering(3, 18)
		require.True(t, ok)
		assert.Equal(t, "defghijklmnopqr", text)
	})

	t.Run("char lookup", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		s.add(&frame{begin: 3, end: 13, charBegin: 3, charLen: 10, text: "0123456789"})
		text, ok := s.coveringChars(5, 9)
		require.True(t, ok)
		assert.Equal(t, "2345", text)
		_, ok = s.coveringChars(2, 5)
		assert.False(t, ok)
		_, ok = s.coveringChars(5, 14)
		assert.False(t, ok)
	})

	t.Run("char lookup with multibyte text", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		s.add(&frame{begin: 1, end: 10, charBegin: 1, charLen: 3, text: "第一条"})
		text, ok := s.coveringChars(2, 4)
		require.True(t, ok)
		assert.Equal(t, "一条", text)
	})

	t.Run("char lookup skips unanchored frames", func(t *testing.T) {
		t.Parallel()
		var s frameStore
		s.add(&frame{begin: 0, end: 10, charBegin: -1, text: "0123456789"})
		_, ok := s.coveringChars(0, 5)
		assert.False(t, ok)
	})
}

func TestFrameAnchor(t *testing.T) {
	t.Parallel()

	// Byte 4 is the start of "一", character 2 of the file.
	f := &frame{begin: 1, end: 10, charBegin: -1, text: "第一条"}
	f.anchor(4, 2)
	assert.Equal(t, int64(1), f.charBegin)
	assert.Equal(t, int64(3), f.charLen)
	assert.Equal(t, "一条", f.sliceChars(2, 4))
}

func TestFrameBoundary(t *testing.T) {
	t.Parallel()

	f := &frame{begin: 1, end: 10, charBegin: -1, text: "第一条"}
	assert.True(t, f.boundary(1))
	assert.True(t, f.boundary(4))
	assert.True(t, f.boundary(10))
	assert.False(t, f.boundary(2))
	assert.False(t, f.boundary(9))
}
