package store

import (
	"context"
	"sync"

	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
)

// writeJob is one pending file write. The save closure is built by the
// caller so the writer stays ignorant of element types.
type writeJob struct {
	path string
	save func() error
}

// Writer serializes persistence onto one background goroutine. Writes are
// fire-and-forget: callers never wait on disk, and a failed write is
// reported through the error callback instead of an error return.
type Writer struct {
	jobs    chan writeJob
	onError func(path string, err error)
	log     logging.Logger

	wg   sync.WaitGroup
	once sync.Once
}

func NewWriter(onError func(path string, err error), log logging.Logger) *Writer {
	w := &Writer{
		jobs:    make(chan writeJob, 64),
		onError: onError,
		log:     log,
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *Writer) run() {
	defer w.wg.Done()
	for job := range w.jobs {
		if err := job.save(); err != nil {
			w.log.Error(context.Background(), "background write failed", "path", job.path, "error", err)
			if w.onError != nil {
				w.onError(job.path, err)
			}
		}
	}
}

// Enqueue schedules a write of items to path. The items slice must not be
// mutated after the call; callers pass a snapshot.
func Enqueue[T any](w *Writer, path string, items []T) {
	w.jobs <- writeJob{path: path, save: func() error { return Save(path, items) }}
}

// Close drains outstanding writes and stops the goroutine.
func (w *Writer) Close() {
	w.once.Do(func() { close(w.jobs) })
	w.wg.Wait()
}
