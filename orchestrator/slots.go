package orchestrator

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Slot is a logical execution context admitting at most one in-flight
// request. The two slots are independent: cancelling one never affects the
// other.
type Slot string

const (
	SlotInitial Slot = "initial"
	SlotDebug   Slot = "debug"
)

type pending struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// acquire claims a slot for a new request. Any prior request in the same
// slot is cancelled and awaited first, so a replaced request can never keep
// running with an orphaned cancellation handle. Returns the request context
// and a release func; fails only if parent is cancelled while waiting.
func (o *Orchestrator) acquire(parent context.Context, slot Slot) (context.Context, func(), error) {
	for {
		o.mu.Lock()
		prev := o.slots[slot]
		if prev == nil {
			break
		}
		o.mu.Unlock()
		log.Printf("Slot %s busy with request %s, cancelling it", slot, prev.id)
		prev.cancel()
		select {
		case <-prev.done:
		case <-parent.Done():
			return nil, nil, parent.Err()
		}
	}
	// mu is held here
	ctx, cancel := context.WithCancel(parent)
	p := &pending{id: uuid.NewString(), cancel: cancel, done: make(chan struct{})}
	o.slots[slot] = p
	o.mu.Unlock()
	log.Printf("Slot %s acquired by request %s", slot, p.id)

	release := func() {
		o.mu.Lock()
		if o.slots[slot] == p {
			delete(o.slots, slot)
		}
		o.mu.Unlock()
		cancel()
		close(p.done)
	}
	return ctx, release, nil
}

// Cancel aborts the in-flight request in one slot, if any. The aborted
// pipeline reports a Canceled outcome; queues are left untouched.
func (o *Orchestrator) Cancel(slot Slot) {
	o.mu.Lock()
	p := o.slots[slot]
	o.mu.Unlock()
	if p != nil {
		log.Printf("Cancelling request %s in slot %s", p.id, slot)
		p.cancel()
	}
}

// CancelAll aborts every in-flight request.
func (o *Orchestrator) CancelAll() {
	o.Cancel(SlotInitial)
	o.Cancel(SlotDebug)
}
