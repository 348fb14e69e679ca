// Package storage uploads PDF menus to the configured file store.
package storage

import (
	"context"
	"io"
	"sync/atomic"
)

// ProgressFunc receives the number of bytes sent so far and the total size
type ProgressFunc func(sent, total int64)

// FileStore accepts a PDF and returns the storage path the backend records
type FileStore interface {
	Upload(ctx context.Context, filename string, r io.Reader, size int64, progress ProgressFunc) (string, error)
}

type progressReader struct {
	r        io.Reader
	total    int64
	sent     atomic.Int64
	progress ProgressFunc
}

// NewProgressReader reports byte progress as r is consumed
func NewProgressReader(r io.Reader, total int64, progress ProgressFunc) io.Reader {
	if progress == nil {
		return r
	}
	return &progressReader{r: r, total: total, progress: progress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.progress(p.sent.Add(int64(n)), p.total)
	}
	return n, err
}
