package topic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Kind selects the capability of an open handle. A handle is exactly one of
// Reader or Writer, never both, never neither.
type Kind int

const (
	// Reader handles consume messages published after they opened.
	Reader Kind = iota + 1

	// Writer handles publish messages.
	Writer
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Reader:
		return "reader"
	case Writer:
		return "writer"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Handle is one open session against a topic. A handle owns its private
// cursor into the shared buffer; the cursor is read and advanced only under
// the topic lock so it stays consistent with the shared write cursor.
//
// A handle must not be used after Close. Handles are safe for concurrent use,
// though interleaved reads on one reader handle share a single cursor.
type Handle struct {
	id       uuid.UUID
	topic    *Topic
	kind     Kind
	cursor   uint64 // monotonic; physical offset is cursor % capacity
	nonblock bool   // guarded by topic.mu
	closed   bool   // guarded by topic.mu
}

// Open creates a handle of the given kind. It fails with ErrAccessDenied
// unless kind is exactly Reader or Writer, with ErrNotConfigured before both
// slot parameters are set, and with ErrOutOfMemory when the first open cannot
// allocate the backing buffer (configuration is preserved for a retry).
//
// A new reader's cursor is set to the current write position: it never sees
// messages published before it opened.
func (t *Topic) Open(kind Kind) (*Handle, error) {
	if kind != Reader && kind != Writer {
		return nil, ErrAccessDenied
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		return nil, ErrClosed
	}
	if t.slotSize == 0 || t.slotCount == 0 {
		return nil, ErrNotConfigured
	}

	if t.buf == nil {
		buf, err := t.alloc(int(t.capacity()))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		}
		t.buf = buf
	}

	h := &Handle{
		id:     uuid.New(),
		topic:  t,
		kind:   kind,
		cursor: t.writeSeq,
	}

	switch kind {
	case Reader:
		t.readerCount++
	case Writer:
		t.writerCount++
		// Pollers re-evaluate writer presence on this wakeup.
		t.signalReadable()
	}

	t.logger.Debug("handle opened",
		slog.String("topic", t.name),
		slog.String("handle", h.id.String()),
		slog.String("kind", kind.String()))

	return h, nil
}

// ID returns the handle's unique identifier, stable for its lifetime.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Kind returns whether the handle is a Reader or a Writer.
func (h *Handle) Kind() Kind {
	return h.kind
}

// Topic returns the topic this handle is open against.
func (h *Handle) Topic() *Topic {
	return h.topic
}

// SetNonblocking switches the handle between blocking and non-blocking mode.
// In non-blocking mode every suspension point returns ErrWouldBlock instead
// of parking the caller.
func (h *Handle) SetNonblocking(nonblock bool) {
	h.topic.mu.Lock()
	defer h.topic.mu.Unlock()
	h.nonblock = nonblock
}

// Close releases the handle. Buffer contents and shared cursors are left
// untouched.
//
// A reader that closes while the broadcast gate still expects a read from it
// does not return its credit: the gate keeps waiting for a read that will
// never come, and writers stay blocked until another reader's read drains
// the region. Close carries no gate heuristics; control planes that revoke
// readers should drain them first.
func (h *Handle) Close() error {
	t := h.topic

	t.mu.Lock()
	defer t.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	h.closed = true

	switch h.kind {
	case Reader:
		t.readerCount--
	case Writer:
		t.writerCount--
		// Readers polling for hangup re-check writer presence.
		t.signalReadable()
	}

	t.logger.Debug("handle closed",
		slog.String("topic", t.name),
		slog.String("handle", h.id.String()),
		slog.String("kind", h.kind.String()))

	return nil
}

// Write publishes up to len(p) bytes. The length must be a multiple of the
// slot size (ErrInvalidMessageSize) and no larger than the topic capacity
// (ErrMessageTooLarge). While the buffer is full the call blocks until space
// is reclaimed, returns ErrWouldBlock in non-blocking mode, or unwinds with
// ErrInterrupted when ctx is cancelled mid-wait.
//
// Write accepts at most the contiguous span up to the end of the buffer or
// up to the shared tail, whichever is nearer, so the returned count may be
// short of len(p). Callers publishing more than one slot loop until the
// whole payload is accepted.
func (h *Handle) Write(ctx context.Context, p []byte) (int, error) {
	if h.kind != Writer {
		return 0, ErrAccessDenied
	}

	t := h.topic

	t.mu.Lock()
	defer t.mu.Unlock()

	if h.closed || t.destroyed {
		return 0, ErrClosed
	}

	// Validate against the untruncated length; a conversion to uint32 first
	// would let a 2^32-byte payload pass both checks as zero.
	capacity := t.capacity()
	if len(p)%int(t.slotSize) != 0 {
		return 0, ErrInvalidMessageSize
	}
	if len(p) > int(capacity) {
		return 0, ErrMessageTooLarge
	}
	if len(p) == 0 {
		return 0, nil
	}

	for t.pending() == capacity {
		if h.nonblock {
			return 0, ErrWouldBlock
		}
		if err := t.waitWritable(ctx); err != nil {
			return 0, err
		}
		if h.closed || t.destroyed {
			return 0, ErrClosed
		}
	}

	// Accept only the contiguous span: up to the physical end of the buffer,
	// or up to the unreclaimed tail, whichever comes first.
	wpos := uint32(t.writeSeq % uint64(capacity))
	tpos := uint32(t.tailSeq % uint64(capacity))

	n := uint32(len(p))
	if wpos >= tpos {
		n = min(n, capacity-wpos)
	} else {
		n = min(n, tpos-wpos)
	}

	copy(t.buf[wpos:wpos+n], p[:n])
	t.writeSeq += uint64(n)

	// Every reader open right now must consume the published region before
	// its storage is reclaimed.
	t.pendingReaders = t.readerCount
	if t.pendingReaders == 0 {
		// No subscribers, nothing to gate: reclaim at once so writer-only
		// topics never stall.
		t.tailSeq = t.writeSeq
		t.signalWritable()
	}

	t.signalReadable()
	return int(n), nil
}

// Read copies out up to len(p) unread bytes. While the handle has no unread
// data the call blocks until a write lands, returns ErrWouldBlock in
// non-blocking mode, or unwinds with ErrInterrupted when ctx is cancelled
// mid-wait.
//
// Read stops at the physical end of the buffer; a region spanning the wrap
// boundary arrives in two calls. When the last gated reader's read drains a
// published region the shared tail advances and blocked writers wake.
func (h *Handle) Read(ctx context.Context, p []byte) (int, error) {
	if h.kind != Reader {
		return 0, ErrAccessDenied
	}

	t := h.topic

	t.mu.Lock()
	defer t.mu.Unlock()

	if h.closed || t.destroyed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	// The gate counts read calls, not readers, so another reader's full-span
	// read can advance the tail past a cursor that only took a short read.
	// Resume at the oldest unreclaimed byte rather than handing out
	// reclaimed storage.
	if h.cursor < t.tailSeq {
		h.cursor = t.tailSeq
	}

	for h.cursor == t.writeSeq {
		if h.nonblock {
			return 0, ErrWouldBlock
		}
		if err := t.waitReadable(ctx); err != nil {
			return 0, err
		}
		if h.closed || t.destroyed {
			return 0, ErrClosed
		}
		if h.cursor < t.tailSeq {
			h.cursor = t.tailSeq
		}
	}

	capacity := t.capacity()
	cpos := uint32(h.cursor % uint64(capacity))

	// Available span up to the write cursor, stopping at the physical end of
	// the buffer before wrapping.
	avail := min(t.writeSeq-h.cursor, uint64(capacity-cpos))

	n := uint32(min(uint64(len(p)), avail))
	copy(p[:n], t.buf[cpos:cpos+n])
	h.cursor += uint64(n)

	if t.pendingReaders > 0 {
		t.pendingReaders--
		if t.pendingReaders == 0 {
			// Gate drained: reclaim what this read walked past.
			t.tailSeq = min(t.tailSeq+uint64(n), t.writeSeq)
			t.signalWritable()
		}
	}

	return int(n), nil
}

// Poll reports, without blocking, whether the handle has data to read and
// whether the topic has space to write. Callers that need a wakeup on the
// next state change register with Topic.Readable and Topic.Writable.
func (h *Handle) Poll() (readable, writable bool) {
	t := h.topic

	t.mu.Lock()
	defer t.mu.Unlock()

	if h.closed || t.destroyed {
		return false, false
	}

	readable = h.cursor != t.writeSeq
	writable = t.pending() < t.capacity()
	return readable, writable
}

// waitReadable parks the caller until the readable condition is signalled or
// ctx is cancelled. Must be called with mu held; mu is released for the
// duration of the wait and re-acquired before returning. The caller re-checks
// its condition afterwards, so spurious wakeups are harmless.
func (t *Topic) waitReadable(ctx context.Context) error {
	ch := t.readable
	t.mu.Unlock()

	select {
	case <-ch:
		t.mu.Lock()
		return nil
	case <-ctx.Done():
		t.mu.Lock()
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
}

// waitWritable is waitReadable for the writable condition.
func (t *Topic) waitWritable(ctx context.Context) error {
	ch := t.writable
	t.mu.Unlock()

	select {
	case <-ch:
		t.mu.Lock()
		return nil
	case <-ctx.Done():
		t.mu.Lock()
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
}
