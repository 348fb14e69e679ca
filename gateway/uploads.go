package main

import (
	"sync"
	"time"

	"github.com/pavitra93/menulink/shared/storage"
)

// uploadProgress is the byte progress of one PDF upload
type uploadProgress struct {
	ID         string     `json:"id"`
	Sent       int64      `json:"sent"`
	Total      int64      `json:"total"`
	Percent    int        `json:"percent"`
	Done       bool       `json:"done"`
	Error      string     `json:"error,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// uploadTracker lets an owner poll an upload that is still streaming
type uploadTracker struct {
	mu        sync.Mutex
	uploads   map[string]*uploadProgress
	retention time.Duration
}

func newUploadTracker(retention time.Duration) *uploadTracker {
	return &uploadTracker{uploads: make(map[string]*uploadProgress), retention: retention}
}

// start registers an upload and returns its progress callback
func (t *uploadTracker) start(id string, total int64) storage.ProgressFunc {
	t.mu.Lock()
	t.prune()
	t.uploads[id] = &uploadProgress{ID: id, Total: total}
	t.mu.Unlock()

	return func(sent, total int64) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if p, ok := t.uploads[id]; ok {
			p.Sent = sent
			p.Total = total
			if total > 0 {
				p.Percent = int(sent * 100 / total)
			}
		}
	}
}

func (t *uploadTracker) finish(id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.uploads[id]
	if !ok {
		return
	}
	now := time.Now()
	p.Done = true
	p.FinishedAt = &now
	if err != nil {
		p.Error = err.Error()
	} else {
		p.Sent = p.Total
		p.Percent = 100
	}
}

func (t *uploadTracker) get(id string) (uploadProgress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.uploads[id]
	if !ok {
		return uploadProgress{}, false
	}
	return *p, true
}

// prune drops finished uploads past retention. Caller holds mu.
func (t *uploadTracker) prune() {
	cutoff := time.Now().Add(-t.retention)
	for id, p := range t.uploads {
		if p.FinishedAt != nil && p.FinishedAt.Before(cutoff) {
			delete(t.uploads, id)
		}
	}
}
