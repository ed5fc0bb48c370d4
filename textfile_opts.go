package textframe

import "github.com/meigma/textframe/internal/index"

// DefaultGranularity is the checkpoint stride in characters used when
// no WithGranularity option is set.
const DefaultGranularity = index.DefaultGranularity

// config holds configuration for Open.
type config struct {
	indexPath   string
	granularity int64
	lineIndex   bool
}

// Option configures Open.
type Option func(*config)

// WithIndexPath sets a sidecar cache file for the index. When the file
// exists, decodes, and its stored digest matches the source file, Open
// skips the scan; otherwise the index is rebuilt and the sidecar
// rewritten. A stale or corrupt sidecar is never an error.
func WithIndexPath(path string) Option {
	return func(c *config) {
		c.indexPath = path
	}
}

// WithoutLineIndex disables the line index, saving scan time and
// memory. Line-based operations on the returned TextFile fail with
// ErrNoLineIndex.
func WithoutLineIndex() Option {
	return func(c *config) {
		c.lineIndex = false
	}
}

// WithGranularity sets the checkpoint stride in characters. Smaller
// strides bound per-request decode work more tightly at the cost of
// index size. Values <= 0 use DefaultGranularity.
func WithGranularity(chars int64) Option {
	return func(c *config) {
		if chars <= 0 {
			chars = DefaultGranularity
		}
		c.granularity = chars
	}
}
