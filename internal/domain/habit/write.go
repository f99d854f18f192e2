package habit

import "context"

// Write tracks one asynchronous durable write. Callers may wait on it or
// drop it; the in-memory change has already been applied either way.
type Write struct {
	done chan struct{}
	err  error
}

func newWrite() *Write {
	return &Write{done: make(chan struct{})}
}

// completedWrite is returned for no-op mutations.
func completedWrite() *Write {
	w := newWrite()
	close(w.done)
	return w
}

func (w *Write) finish(err error) {
	w.err = err
	close(w.done)
}

// Done is closed once the write has finished.
func (w *Write) Done() <-chan struct{} {
	return w.done
}

// Wait blocks until the write finishes or ctx is done, and returns the
// write's error.
func (w *Write) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
