package batch

import "github.com/crimson-sun/tiermap/internal/output"

// sequencer holds envelopes that finished early until every lower index
// has been released.
type sequencer struct {
	next    int
	pending map[int]output.Envelope
}

func newSequencer() *sequencer {
	return &sequencer{pending: make(map[int]output.Envelope)}
}

// push accepts env and returns the envelopes that are now releasable, in
// index order.
func (s *sequencer) push(env output.Envelope) []output.Envelope {
	s.pending[env.Index] = env
	var ready []output.Envelope
	for {
		e, ok := s.pending[s.next]
		if !ok {
			return ready
		}
		delete(s.pending, s.next)
		ready = append(ready, e)
		s.next++
	}
}

// held reports how many envelopes are waiting on a lower index.
func (s *sequencer) held() int { return len(s.pending) }
