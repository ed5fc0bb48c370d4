package textframe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/textframe/internal/index"
)

// scanGroup deduplicates concurrent index scans. All Opens of the same
// (path, granularity, line-mode) share a single scan; the resulting
// immutable index is shared across handles.
var scanGroup singleflight.Group

// TextFile provides random access to a UTF-8 text file addressed by
// character offset or line number, without holding the file in memory.
//
// Loaded excerpts ("frames") are kept for the lifetime of the TextFile,
// and every string returned by an accessor aliases a frame's backing
// buffer, so returned strings stay valid until Close.
//
// Operations that may load a frame (GetOrLoad*, Load*) take an internal
// write lock; the non-loading accessors (Get*) take a read lock and
// never touch the disk, so any number of readers can fetch
// already-cached excerpts concurrently.
//
// The source file must not be modified while the TextFile is open;
// this is a contract, not a detected condition.
type TextFile struct {
	mu      sync.RWMutex
	path    string
	f       *os.File
	idx     *index.Index
	frames  frameStore
	modTime time.Time
}

// Open associates a TextFile with an existing text file on disk.
//
// Without WithIndexPath, the file is scanned once to build the
// character-offset index. With it, a matching sidecar cache skips the
// scan; a missing, corrupt, or stale sidecar triggers a rebuild and is
// never surfaced as an error.
//
// Open fails with ErrEmptyText for a zero-byte file and with an
// EncodingError when the file is not valid UTF-8.
func Open(path string, opts ...Option) (*TextFile, error) {
	cfg := config{granularity: index.DefaultGranularity, lineIndex: true}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, ErrEmptyText
	}

	idx, fresh, err := loadOrBuildIndex(f, path, &cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	if cfg.indexPath != "" && fresh {
		_ = idx.WriteFile(cfg.indexPath) //nolint:errcheck // caching is opportunistic
	}

	return &TextFile{
		path:    path,
		f:       f,
		idx:     idx,
		modTime: info.ModTime(),
	}, nil
}

// loadOrBuildIndex returns a usable index for f, preferring the sidecar
// cache. fresh reports whether the index was built by a new scan.
func loadOrBuildIndex(f *os.File, path string, cfg *config) (*index.Index, bool, error) {
	if cfg.indexPath != "" {
		if idx, err := index.ReadFile(cfg.indexPath); err == nil && usableIndex(idx, f, cfg) {
			return idx, false, nil
		}
		// Stale, corrupt, or mismatched sidecars fall through to a rebuild.
	}
	idx, err := buildIndex(f, path, cfg)
	return idx, true, err
}

// usableIndex reports whether a cached index matches the requested
// configuration and the current file content. The digest comparison is
// the sole consistency mechanism; there is no timestamp shortcut.
func usableIndex(idx *index.Index, f *os.File, cfg *config) bool {
	if idx.Granularity() != cfg.granularity || idx.HasLines() != cfg.lineIndex {
		return false
	}
	dgst, err := digestFile(f)
	if err != nil {
		return false
	}
	return dgst == idx.Digest()
}

func digestFile(f *os.File) (digest.Digest, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return digest.FromReader(f)
}

func buildIndex(f *os.File, path string, cfg *config) (*index.Index, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	key := fmt.Sprintf("%s|%d|%t", abs, cfg.granularity, cfg.lineIndex)
	v, err, _ := scanGroup.Do(key, func() (any, error) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return index.Build(f, cfg.granularity, cfg.lineIndex)
	})
	if err != nil {
		return nil, err
	}
	idx, _ := v.(*index.Index) //nolint:errcheck // type assertion always succeeds when err is nil
	return idx, nil
}

// Close releases the file handle. Accessors that need disk reads fail
// after Close; previously returned strings remain valid.
func (t *TextFile) Close() error {
	return t.f.Close()
}

// Path returns the path of the source file.
func (t *TextFile) Path() string { return t.path }

// Len returns the length of the text in characters.
func (t *TextFile) Len() int64 { return t.idx.CharSize() }

// ByteLen returns the length of the text in bytes.
func (t *TextFile) ByteLen() int64 { return t.idx.ByteSize() }

// Checksum returns the content digest of the source file. Its string
// form is the canonical "sha256:<hex>" representation.
func (t *TextFile) Checksum() digest.Digest { return t.idx.Digest() }

// ModTime returns the modification time of the source file captured at
// Open.
func (t *TextFile) ModTime() time.Time { return t.modTime }

// LineCount returns the number of lines, or ErrNoLineIndex when the
// TextFile was opened without a line index. A line includes its
// trailing terminator; a trailing terminator does not open a final
// empty line, so "a\nb\nc\n" has three lines.
func (t *TextFile) LineCount() (int64, error) {
	if !t.idx.HasLines() {
		return 0, ErrNoLineIndex
	}
	return t.idx.LineCount(), nil
}

// SaveIndex persists the index to a sidecar cache file, regardless of
// whether Open was given an index path.
func (t *TextFile) SaveIndex(path string) error {
	return t.idx.WriteFile(path)
}

// GetOrLoad returns the text of the character range [begin, end),
// loading it from disk unless an already-loaded frame covers it.
//
// A negative offset is interpreted relative to the end of the text and
// an end of exactly 0 means the end of the text: GetOrLoad(0, 0)
// returns the whole document, GetOrLoad(-10, 0) the last ten
// characters. The returned string stays valid for the lifetime of the
// TextFile.
func (t *TextFile) GetOrLoad(begin, end int64) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	charBegin, beginByte, endByte, err := t.charRange(begin, end)
	if err != nil {
		return "", err
	}
	return t.loadRange(beginByte, endByte, charBegin)
}

// Get returns the text of the character range [begin, end) when it is
// already covered by a loaded frame and fails with ErrNotLoaded
// otherwise. Get never touches the disk: the range is resolved and
// served entirely from loaded frames, so cached excerpts stay
// readable even after the file handle is closed. Offsets follow the
// same end-relative rules as GetOrLoad.
//
// Frames loaded through GetOrLoadByteRange carry no character
// position and are not visible to Get; address those through
// GetByteRange.
func (t *TextFile) Get(begin, end int64) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, e, err := resolveRange(begin, end, t.idx.CharSize())
	if err != nil {
		return "", err
	}
	if b == e {
		return "", nil
	}
	text, ok := t.frames.coveringChars(b, e)
	if !ok {
		return "", fmt.Errorf("%w: characters [%d,%d)", ErrNotLoaded, b, e)
	}
	return text, nil
}

// Load loads the character range [begin, end) into memory without
// returning it. Offsets follow the same rules as GetOrLoad.
func (t *TextFile) Load(begin, end int64) error {
	_, err := t.GetOrLoad(begin, end)
	return err
}

// GetOrLoadLines returns the text of the line range [begin, end),
// loading it from disk unless an already-loaded frame covers it. Line
// numbers are 0-indexed and follow the same end-relative rules as
// character offsets: GetOrLoadLines(0, 0) returns the whole document,
// GetOrLoadLines(-1, 0) the final line. Each line includes its trailing
// terminator.
//
// Fails with ErrNoLineIndex when the TextFile was opened without a
// line index.
func (t *TextFile) GetOrLoadLines(begin, end int64) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	charBegin, beginByte, endByte, err := t.lineRange(begin, end)
	if err != nil {
		return "", err
	}
	return t.loadRange(beginByte, endByte, charBegin)
}

// GetLines returns the text of the line range [begin, end) when it is
// already covered by a loaded frame and fails with ErrNotLoaded
// otherwise, touching no disk. Line numbers follow the same rules as
// GetOrLoadLines.
func (t *TextFile) GetLines(begin, end int64) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, beginByte, endByte, err := t.lineRange(begin, end)
	if err != nil {
		return "", err
	}
	return t.cachedRange(beginByte, endByte)
}

// LoadLines loads the line range [begin, end) into memory without
// returning it.
func (t *TextFile) LoadLines(begin, end int64) error {
	_, err := t.GetOrLoadLines(begin, end)
	return err
}

// GetOrLoadByteRange returns the text of the byte range [begin, end),
// loading it from disk unless an already-loaded frame covers it.
//
// Byte offsets are absolute: no end-relative forms apply. Both offsets
// must fall on character boundaries of the file or the call fails with
// ErrMisalignedOffset.
func (t *TextFile) GetOrLoadByteRange(begin, end int64) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkByteRange(begin, end); err != nil {
		return "", err
	}
	charBegin := int64(-1)
	if begin == 0 {
		charBegin = 0
	}
	return t.loadRange(begin, end, charBegin)
}

// GetByteRange returns the text of the byte range [begin, end) when it
// is already covered by a loaded frame and fails with ErrNotLoaded
// otherwise. No disk is touched: boundary alignment is validated
// against the loaded frame's own bytes, so an uncovered range reports
// ErrNotLoaded even when its offsets are misaligned.
func (t *TextFile) GetByteRange(begin, end int64) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if err := t.checkByteBounds(begin, end); err != nil {
		return "", err
	}
	if begin == end {
		return "", nil
	}
	f, ok := t.frames.frameCovering(begin, end)
	if !ok {
		return "", fmt.Errorf("%w: bytes [%d,%d)", ErrNotLoaded, begin, end)
	}
	for _, off := range []int64{begin, end} {
		if !f.boundary(off) {
			return "", fmt.Errorf("%w: byte %d", ErrMisalignedOffset, off)
		}
	}
	return f.slice(begin, end), nil
}

// charRange resolves a character range to its begin character offset
// plus absolute byte offsets. Resolution may read one checkpoint
// window per endpoint, so callers hold the write lock.
func (t *TextFile) charRange(begin, end int64) (int64, int64, int64, error) {
	b, e, err := resolveRange(begin, end, t.idx.CharSize())
	if err != nil {
		return 0, 0, 0, err
	}
	beginByte, err := t.idx.ByteOffset(t.f, b)
	if err != nil {
		return 0, 0, 0, err
	}
	endByte, err := t.idx.ByteOffset(t.f, e)
	if err != nil {
		return 0, 0, 0, err
	}
	return b, beginByte, endByte, nil
}

// lineRange resolves a line range to its begin character offset plus
// absolute byte offsets, purely from the line index.
func (t *TextFile) lineRange(begin, end int64) (int64, int64, int64, error) {
	if !t.idx.HasLines() {
		return 0, 0, 0, ErrNoLineIndex
	}
	count := t.idx.LineCount()
	b, e, err := resolveRange(begin, end, count)
	if err != nil {
		if errors.Is(err, ErrOutOfBounds) {
			return 0, 0, 0, fmt.Errorf("%w: (%d,%d) of %d lines", ErrLineOutOfBounds, begin, end, count)
		}
		return 0, 0, 0, err
	}
	return t.idx.LineChar(b), t.idx.LineByte(b), t.idx.LineByte(e), nil
}

// checkByteBounds validates bounds and ordering of an absolute byte
// range without touching the disk.
func (t *TextFile) checkByteBounds(begin, end int64) error {
	total := t.idx.ByteSize()
	if begin < 0 || end < 0 || begin > total || end > total {
		return fmt.Errorf("%w: byte range (%d,%d) of %d", ErrOutOfBounds, begin, end, total)
	}
	if begin > end {
		return fmt.Errorf("%w: byte range (%d,%d)", ErrInvertedRange, begin, end)
	}
	return nil
}

// checkByteRange validates bounds, ordering, and character-boundary
// alignment of an absolute byte range, reading one byte per offset.
func (t *TextFile) checkByteRange(begin, end int64) error {
	if err := t.checkByteBounds(begin, end); err != nil {
		return err
	}
	for _, off := range []int64{begin, end} {
		ok, err := t.isBoundary(off)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: byte %d", ErrMisalignedOffset, off)
		}
	}
	return nil
}

// isBoundary reports whether off falls on a character boundary of the
// file. The end of the file counts as a boundary.
func (t *TextFile) isBoundary(off int64) (bool, error) {
	if off == t.idx.ByteSize() {
		return true, nil
	}
	var b [1]byte
	if _, err := t.f.ReadAt(b[:], off); err != nil {
		return false, err
	}
	return utf8.RuneStart(b[0]), nil
}

// cachedRange returns [begin, end) from an existing frame, without I/O.
func (t *TextFile) cachedRange(begin, end int64) (string, error) {
	if begin == end {
		return "", nil
	}
	text, ok := t.frames.covering(begin, end)
	if !ok {
		return "", fmt.Errorf("%w: bytes [%d,%d)", ErrNotLoaded, begin, end)
	}
	return text, nil
}

// loadRange returns [begin, end), reading the bytes from disk and
// registering a new frame when no loaded frame covers the range.
// charBegin is the character offset of begin, or -1 when unknown. The
// range falls on character boundaries by construction; the decoded
// bytes are still re-validated before a frame is registered.
func (t *TextFile) loadRange(begin, end, charBegin int64) (string, error) {
	if begin == end {
		return "", nil
	}
	if f, ok := t.frames.frameCovering(begin, end); ok {
		if charBegin >= 0 && f.charBegin < 0 {
			f.anchor(begin, charBegin)
		}
		return f.slice(begin, end), nil
	}

	buf := make([]byte, end-begin)
	n, err := t.f.ReadAt(buf, begin)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", &EncodingError{ByteOffset: begin + invalidOffset(buf)}
	}

	f := &frame{begin: begin, end: end, charBegin: charBegin, text: string(buf)}
	if charBegin >= 0 {
		f.charLen = int64(utf8.RuneCountInString(f.text))
	}
	t.frames.add(f)
	return f.text, nil
}

// invalidOffset returns the offset of the first malformed UTF-8
// sequence in b. b must be known to be invalid.
func invalidOffset(b []byte) int64 {
	var off int64
	for len(b) > 0 {
		ch, size := utf8.DecodeRune(b)
		if ch == utf8.RuneError && size <= 1 {
			return off
		}
		off += int64(size)
		b = b[size:]
	}
	return off
}
