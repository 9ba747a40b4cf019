package progress

import (
	"sync"
	"time"
)

// subscriberBuffer is the channel capacity of one subscription. Updates that
// do not fit are dropped for that subscriber; the final state is always
// available through State.
const subscriberBuffer = 32

// Run is the progress state of one conversion.
type Run struct {
	id    string
	store *Store

	mu       sync.Mutex
	state    Update
	reported bool
	done     bool
	finished time.Time
	subs     map[int]chan Update
	nextSub  int
}

func newRun(id string, store *Store) *Run {
	return &Run{
		id:    id,
		store: store,
		state: Update{Status: StatusConnected},
		subs:  make(map[int]chan Update),
	}
}

// ID returns the run id.
func (r *Run) ID() string {
	return r.id
}

// State returns the last known state.
func (r *Run) State() Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Done reports whether Finish was called.
func (r *Run) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// finishedBefore reports whether the run finished at or before t.
func (r *Run) finishedBefore(t time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done && !r.finished.After(t)
}

// Report merges u into the current state and forwards the result to every
// subscriber. States identical to the previous one are dropped, and so is
// anything reported after Finish.
func (r *Run) Report(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return
	}
	if u.Status == "" {
		u.Status = StatusProcessing
	}

	next := r.state.merge(u)
	if r.reported && next == r.state {
		return
	}
	r.state = next
	r.reported = true

	r.broadcast(next)
}

// Subscribe returns a channel that first receives the current state and then
// every new one. The channel is closed after the terminal state or when the
// returned cancel function is called.
func (r *Run) Subscribe() (<-chan Update, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Update, subscriberBuffer)
	ch <- r.state

	if r.done {
		close(ch)
		return ch, func() {}
	}

	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Finish records the outcome of the run. A nil err marks the run completed
// at 100%; otherwise the run ends in the error state and the result carries
// the error text. Subscriptions are closed after the terminal state.
func (r *Run) Finish(res Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return
	}

	final := r.state
	if err != nil {
		res.Success = false
		res.Error = err.Error()
		if res.Message == "" {
			res.Message = err.Error()
		}
		final.Status = StatusError
		final.Message = res.Message
	} else {
		res.Success = true
		final.Status = StatusCompleted
		final.Progress = 100
		if res.Message != "" {
			final.Message = res.Message
		}
	}

	r.store.Put(r.id, res)

	r.state = final
	r.reported = true
	r.done = true
	r.finished = time.Now()

	r.broadcast(final)
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
}

// broadcast must be called with r.mu held. It never blocks.
func (r *Run) broadcast(u Update) {
	for _, ch := range r.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
