package matgraph

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Session drives live preview re-evaluation. Every [Session.Apply] starts a new
// generation and only the newest generation's record is ever published, so a
// slow pass can never overwrite the result of a pass started after it.
type Session struct {
	reducer *Reducer
	publish func(gen uint64, rec *Record)
	log     *slog.Logger

	mu    sync.Mutex // serializes the generation check with publishing.
	gen   atomic.Uint64
	stale atomic.Uint64
}

// NewSession returns a session publishing reduced records to publish.
// publish is called with the session lock held and must not call back into the session.
func NewSession(r *Reducer, publish func(gen uint64, rec *Record)) *Session {
	return &Session{reducer: r, publish: publish, log: r.log}
}

// Apply reduces g as a new generation. It reports whether the result was published;
// a pass superseded by a newer Apply while it ran is dropped.
func (s *Session) Apply(ctx context.Context, g *Graph) (published bool, err error) {
	gen := s.gen.Add(1)
	rec, err := s.reducer.Reduce(ctx, g)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen.Load() {
		s.stale.Add(1)
		s.log.Debug("dropping stale material pass", "generation", gen, "latest", s.gen.Load())
		return false, nil
	}
	s.publish(gen, rec)
	return true, nil
}

// Generation returns the generation of the most recently started pass.
func (s *Session) Generation() uint64 { return s.gen.Load() }

// Stale returns the amount of passes dropped for being superseded.
func (s *Session) Stale() uint64 { return s.stale.Load() }
