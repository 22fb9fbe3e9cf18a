// Package pacer turns an already-complete assistant reply into a paced,
// cancellable reveal. This is presentation timing only: the full text is
// in hand before pacing begins, and stopping the reveal never touches
// the persisted message.
package pacer

import (
	"strings"
	"sync"
	"time"
)

// State of one reveal.
type State int

const (
	StateIdle State = iota
	StateRevealing
	StateCancelled
	StateComplete
)

// DefaultInterval is the reference pace: one token every 30ms.
const DefaultInterval = 30 * time.Millisecond

// Pacer reveals a reply one whitespace-separated token at a time on a
// fixed interval. Starting a new reply resets any reveal in progress;
// Stop freezes the revealed prefix without truncating it.
type Pacer struct {
	interval time.Duration

	mu     sync.Mutex
	state  State
	tokens []string
	shown  int
	cur    *run
}

// run is one reveal's cancellation handle. A fresh run per Start keeps
// Stop and re-arm from double-closing the same channel.
type run struct {
	stop chan struct{}
	once sync.Once
}

func (r *run) cancel() {
	r.once.Do(func() { close(r.stop) })
}

func New(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pacer{interval: interval, state: StateIdle}
}

// Start begins revealing reply. Any in-progress reveal is cancelled and
// the displayed prefix resets to empty before the new sequence starts.
// The returned channel delivers each growing prefix and closes on
// completion or cancellation; check State to tell the two apart.
func (p *Pacer) Start(reply string) <-chan string {
	p.mu.Lock()
	if p.cur != nil {
		p.cur.cancel()
	}
	p.tokens = strings.Fields(reply)
	p.shown = 0
	p.cur = &run{stop: make(chan struct{})}
	r := p.cur

	updates := make(chan string)
	if len(p.tokens) == 0 {
		p.state = StateComplete
		p.mu.Unlock()
		close(updates)
		return updates
	}
	p.state = StateRevealing
	p.mu.Unlock()

	go p.reveal(r, updates)
	return updates
}

// Stop freezes the current reveal. Already-revealed text stays; nothing
// further is emitted. No-op outside the Revealing state.
func (p *Pacer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateRevealing {
		return
	}
	p.state = StateCancelled
	p.cur.cancel()
}

// Text returns the currently revealed prefix.
func (p *Pacer) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.tokens[:p.shown], " ")
}

func (p *Pacer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pacer) reveal(r *run, updates chan string) {
	defer close(updates)

	tick := time.NewTicker(p.interval)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			p.mu.Lock()
			if p.cur != r || p.state != StateRevealing {
				p.mu.Unlock()
				return
			}
			next := strings.Join(p.tokens[:p.shown+1], " ")
			p.mu.Unlock()

			select {
			case updates <- next:
			case <-r.stop:
				return
			}

			p.mu.Lock()
			if p.cur != r {
				p.mu.Unlock()
				return
			}
			p.shown++
			if p.shown == len(p.tokens) {
				p.state = StateComplete
				p.mu.Unlock()
				return
			}
			p.mu.Unlock()
		case <-r.stop:
			return
		}
	}
}
