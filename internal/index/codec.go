package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/textframe/internal/fb"
)

// indexVersion is the sidecar format version. Decoding any other
// version is treated as a cache miss by callers.
const indexVersion = 1

// Encode serializes the index to FlatBuffers format.
func (idx *Index) Encode() []byte {
	builder := flatbuffers.NewBuilder(1024)

	digestOffset := builder.CreateString(string(idx.dgst))

	// Build vectors in reverse order (FlatBuffers requirement)
	fb.IndexStartLinesVector(builder, len(idx.lines))
	for i := len(idx.lines) - 1; i >= 0; i-- {
		fb.CreateLineStart(builder, uint64(idx.lines[i].Char), uint64(idx.lines[i].Byte))
	}
	linesOffset := builder.EndVector(len(idx.lines))

	fb.IndexStartCheckpointsVector(builder, len(idx.checkpoints))
	for i := len(idx.checkpoints) - 1; i >= 0; i-- {
		fb.CreateCheckpoint(builder, uint64(idx.checkpoints[i].Char), uint64(idx.checkpoints[i].Byte))
	}
	checkpointsOffset := builder.EndVector(len(idx.checkpoints))

	fb.IndexStart(builder)
	fb.IndexAddVersion(builder, indexVersion)
	fb.IndexAddGranularity(builder, uint64(idx.granularity))
	fb.IndexAddCharSize(builder, uint64(idx.charSize))
	fb.IndexAddByteSize(builder, uint64(idx.byteSize))
	fb.IndexAddDigest(builder, digestOffset)
	fb.IndexAddCheckpoints(builder, checkpointsOffset)
	fb.IndexAddLineIndex(builder, idx.hasLines)
	fb.IndexAddLines(builder, linesOffset)
	indexOffset := fb.IndexEnd(builder)

	builder.Finish(indexOffset)
	return builder.FinishedBytes()
}

// Decode parses a FlatBuffers-encoded index.
//
// The checkpoint and line vectors are copied out of the buffer: the
// index outlives the transient sidecar bytes and is consulted on every
// request.
func Decode(data []byte) (idx *Index, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("textframe: failed to parse index: %v", r)
		}
	}()
	if len(data) == 0 {
		return nil, errors.New("textframe: empty index data")
	}

	root := fb.GetRootAsIndex(data, 0)
	if root == nil {
		return nil, errors.New("textframe: failed to parse index")
	}
	if root.Version() != indexVersion {
		return nil, fmt.Errorf("textframe: unsupported index version %d", root.Version())
	}

	idx = &Index{
		granularity: int64(root.Granularity()),
		charSize:    int64(root.CharSize()),
		byteSize:    int64(root.ByteSize()),
		dgst:        digest.Digest(root.Digest()),
		hasLines:    root.LineIndex(),
	}
	if idx.granularity <= 0 || idx.byteSize <= 0 {
		return nil, errors.New("textframe: malformed index")
	}

	var cp fb.Checkpoint
	idx.checkpoints = make([]Checkpoint, 0, root.CheckpointsLength())
	for i := 0; i < root.CheckpointsLength(); i++ {
		if !root.Checkpoints(&cp, i) {
			return nil, errors.New("textframe: malformed checkpoint vector")
		}
		idx.checkpoints = append(idx.checkpoints, Checkpoint{
			Char: int64(cp.CharOffset()),
			Byte: int64(cp.ByteOffset()),
		})
	}
	if len(idx.checkpoints) == 0 {
		return nil, errors.New("textframe: index has no checkpoints")
	}

	var ls fb.LineStart
	idx.lines = make([]LineStart, 0, root.LinesLength())
	for i := 0; i < root.LinesLength(); i++ {
		if !root.Lines(&ls, i) {
			return nil, errors.New("textframe: malformed line vector")
		}
		idx.lines = append(idx.lines, LineStart{
			Char: int64(ls.CharOffset()),
			Byte: int64(ls.ByteOffset()),
		})
	}

	return idx, nil
}

// WriteFile persists the index to a zstd-compressed sidecar file. The
// file is written to a temp path and renamed so readers never observe a
// torn cache.
func (idx *Index) WriteFile(path string) error {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	compressed := enc.EncodeAll(idx.Encode(), nil)
	if err := enc.Close(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "textframe-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// ReadFile loads an index from a sidecar file written by WriteFile.
// Callers treat any error as a cache miss and rebuild from the source.
func ReadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("textframe: corrupt index sidecar: %w", err)
	}
	return Decode(raw)
}
