// Package textframe provides random-access, on-demand reading of large
// UTF-8 text files addressed by Unicode character offset or line
// number, without ever loading a file fully into memory.
//
// Opening a file scans it once to build a sparse character-offset index
// (a checkpoint every few thousand characters plus, by default, a line
// index), then serves arbitrary excerpts by reading only the requested
// byte ranges. Loaded excerpts ("frames") are kept for the lifetime of
// the handle, so repeated requests for covered ranges cost no I/O and
// every returned string stays valid until Close.
//
// # Quick Start
//
// Open a file and fetch excerpts:
//
//	tf, err := textframe.Open("corpus.txt")
//	if err != nil {
//	    return err
//	}
//	defer tf.Close()
//
//	head, err := tf.GetOrLoad(0, 100)    // first 100 characters
//	tail, err := tf.GetOrLoad(-100, 0)   // last 100 characters
//	line, err := tf.GetOrLoadLines(-1, 0) // final line
//
// # Index Caching
//
// The index can be persisted to a sidecar file so subsequent opens skip
// the scan. The sidecar stores a content digest of the source file and
// is silently rebuilt whenever the digest no longer matches:
//
//	tf, err := textframe.Open("corpus.txt",
//	    textframe.WithIndexPath("corpus.txt.tfidx"),
//	)
//
// # Concurrency
//
// Loading operations (GetOrLoad*, Load*) take an internal write lock.
// The non-loading accessors (Get*) take a read lock, perform no disk
// I/O, and may run concurrently, so many readers can serve
// already-cached excerpts from one handle.
package textframe
