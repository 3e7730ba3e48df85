package compose

import (
	"context"
	"sync"
	"sync/atomic"
)

// instanceSlots is the number of instance arrays the store rotates through.
const instanceSlots = 2

// InstanceStore double-buffers the per-frame instance arrays so that the
// records of a frame are never rewritten while that frame renders.
//
// Write copies the caller's records into a free slot and marks it in
// flight; the renderer calls Release on the returned FrameInstances once the
// frame has completed. When both slots are in flight Write blocks until one
// is released or the context is done.
type InstanceStore struct {
	mu     sync.Mutex
	cond   *sync.Cond
	slots  [instanceSlots]instanceSlot
	next   int
	frame  uint64
	closed bool
}

type instanceSlot struct {
	records  []InstanceRecord
	inFlight bool
}

// NewInstanceStore creates an empty store.
func NewInstanceStore() *InstanceStore {
	s := &InstanceStore{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Write copies records into a free slot and returns the frame handle.
func (s *InstanceStore) Write(ctx context.Context, records []InstanceRecord) (*FrameInstances, error) {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.closed {
			return nil, ErrStoreClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if slot, ok := s.freeSlot(); ok {
			sl := &s.slots[slot]
			sl.records = append(sl.records[:0], records...)
			sl.inFlight = true
			s.next = (slot + 1) % instanceSlots
			s.frame++
			return &FrameInstances{store: s, slot: slot, records: sl.records, frame: s.frame}, nil
		}
		s.cond.Wait()
	}
}

// freeSlot returns the next slot that is not in flight. Must hold mu.
func (s *InstanceStore) freeSlot() (int, bool) {
	for i := range instanceSlots {
		slot := (s.next + i) % instanceSlots
		if !s.slots[slot].inFlight {
			return slot, true
		}
	}
	return 0, false
}

// InFlight returns the number of slots currently held by frames.
func (s *InstanceStore) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.slots {
		if s.slots[i].inFlight {
			n++
		}
	}
	return n
}

// Close wakes blocked writers and rejects further writes. Frames already
// handed out stay valid until released.
func (s *InstanceStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *InstanceStore) release(slot int) {
	s.mu.Lock()
	s.slots[slot].inFlight = false
	s.cond.Broadcast()
	s.mu.Unlock()
}

// FrameInstances is the read-only view of one frame's instance array.
type FrameInstances struct {
	store    *InstanceStore
	slot     int
	records  []InstanceRecord
	frame    uint64
	released atomic.Bool
}

// NewFrameInstances wraps records that are not managed by a store, for
// one-shot renders and tests. Release is a no-op.
func NewFrameInstances(records []InstanceRecord) *FrameInstances {
	return &FrameInstances{records: records}
}

// Records returns the frame's records. Callers must not modify them.
func (f *FrameInstances) Records() []InstanceRecord { return f.records }

// Len returns the number of instances in the frame.
func (f *FrameInstances) Len() int { return len(f.records) }

// Frame returns the store's sequence number for this frame, starting at 1.
func (f *FrameInstances) Frame() uint64 { return f.frame }

// Bytes encodes the records for upload.
func (f *FrameInstances) Bytes() []byte { return EncodeInstances(f.records) }

// Release returns the slot to the store. It is safe to call more than once.
func (f *FrameInstances) Release() {
	if f.store == nil || !f.released.CompareAndSwap(false, true) {
		return
	}
	f.store.release(f.slot)
}
