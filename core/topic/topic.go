package topic

import (
	"io"
	"log/slog"
	"sync"
)

const (
	// MaxSlotSize is the largest permitted slot size in bytes (one page).
	MaxSlotSize = 4096

	// MaxSlotCount is the largest permitted number of slots per topic.
	MaxSlotCount = 4096
)

// Allocator provides the backing buffer for a topic. It is called once, under
// the topic lock, on the first successful Open. The returned slice must be
// zeroed and exactly size bytes long.
type Allocator func(size int) ([]byte, error)

func defaultAllocator(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// Topic is a named broadcast channel of fixed-slot messages backed by a
// circular buffer. All fields are guarded by mu; blocking operations release
// mu while suspended and re-check their condition after waking.
//
// Cursors are monotonic byte counts; the physical buffer offset is the count
// modulo capacity. Monotonic cursors keep "empty for this reader" (cursor ==
// writeSeq) distinguishable from "full" (writeSeq - tailSeq == capacity) even
// when a write of exactly the capacity wraps the write position onto a
// reader's cursor.
type Topic struct {
	mu sync.Mutex

	name      string
	slotSize  uint32
	slotCount uint32
	buf       []byte // allocated lazily on first open

	writeSeq uint64 // total bytes ever accepted from writers
	tailSeq  uint64 // total bytes ever reclaimed past the broadcast gate

	pendingReaders uint32 // reads outstanding before tailSeq may advance

	readerCount uint32
	writerCount uint32

	// Closed and replaced on every signal; waiters grab the current channel
	// under mu, release mu, and select on it.
	readable chan struct{}
	writable chan struct{}

	destroyed bool

	alloc  Allocator
	logger *slog.Logger
}

// Option configures a Topic.
type Option func(*Topic)

// WithLogger sets a structured logger for topic lifecycle events.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Topic) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithAllocator sets the allocator used for the backing buffer on first open.
// Intended for callers that pool buffers or need to observe allocation
// failure; the default allocator never fails.
func WithAllocator(alloc Allocator) Option {
	return func(t *Topic) {
		if alloc != nil {
			t.alloc = alloc
		}
	}
}

// New creates an unconfigured topic. Both slot size and slot count must be
// set before the first Open succeeds.
func New(name string, opts ...Option) *Topic {
	t := &Topic{
		name:     name,
		readable: make(chan struct{}),
		writable: make(chan struct{}),
		alloc:    defaultAllocator,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Name returns the topic name.
func (t *Topic) Name() string {
	return t.name
}

// SlotSize returns the configured bytes per message, zero if unconfigured.
func (t *Topic) SlotSize() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slotSize
}

// SlotCount returns the configured capacity in messages, zero if unconfigured.
func (t *Topic) SlotCount() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slotCount
}

// Capacity returns the buffer capacity in bytes, zero if unconfigured.
func (t *Topic) Capacity() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.capacity()
}

// Pending returns the number of published bytes not yet reclaimed by the
// broadcast gate.
func (t *Topic) Pending() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending()
}

// ReaderCount returns the number of currently open reader handles.
func (t *Topic) ReaderCount() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readerCount
}

// WriterCount returns the number of currently open writer handles.
func (t *Topic) WriterCount() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writerCount
}

// HandleCount returns the total number of open handles of both kinds.
func (t *Topic) HandleCount() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readerCount + t.writerCount
}

func (t *Topic) capacity() uint32 {
	return t.slotSize * t.slotCount
}

// pending returns writeSeq - tailSeq; the invariant 0 <= pending <= capacity
// holds because writers block at capacity and the gate never reclaims past
// the write cursor. Must be called with mu held.
func (t *Topic) pending() uint32 {
	return uint32(t.writeSeq - t.tailSeq)
}

// signalReadable wakes every waiter parked on the readable condition.
// Must be called with mu held.
func (t *Topic) signalReadable() {
	close(t.readable)
	t.readable = make(chan struct{})
}

// signalWritable wakes every waiter parked on the writable condition.
// Must be called with mu held.
func (t *Topic) signalWritable() {
	close(t.writable)
	t.writable = make(chan struct{})
}

// Readable returns a channel that is closed the next time data becomes
// available on the topic. Poll-style callers re-arm by calling it again
// after each wakeup and re-checking readiness.
func (t *Topic) Readable() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readable
}

// Writable returns a channel that is closed the next time buffer space is
// reclaimed. See Readable for the re-arm discipline.
func (t *Topic) Writable() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writable
}

// SetSlotSize sets the bytes-per-message size. It fails with ErrBusy while
// any handle is open and with ErrInvalidSlotSize when n is zero or exceeds
// MaxSlotSize. The backing buffer is not allocated here; on success any
// previously allocated buffer is released and cursors are rewound, so the
// next Open starts from a clean, zeroed buffer.
func (t *Topic) SetSlotSize(n uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		return ErrClosed
	}
	if n == 0 || n > MaxSlotSize {
		return ErrInvalidSlotSize
	}
	if t.readerCount+t.writerCount > 0 {
		return ErrBusy
	}

	t.slotSize = n
	t.reset()
	return nil
}

// SetSlotCount sets the capacity in messages. Same rules as SetSlotSize,
// failing with ErrInvalidSlotCount when n is zero or exceeds MaxSlotCount.
func (t *Topic) SetSlotCount(n uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		return ErrClosed
	}
	if n == 0 || n > MaxSlotCount {
		return ErrInvalidSlotCount
	}
	if t.readerCount+t.writerCount > 0 {
		return ErrBusy
	}

	t.slotCount = n
	t.reset()
	return nil
}

// Configure sets both slot parameters in one critical section. Either both
// take effect or neither does.
func (t *Topic) Configure(slotSize, slotCount uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		return ErrClosed
	}
	if slotSize == 0 || slotSize > MaxSlotSize {
		return ErrInvalidSlotSize
	}
	if slotCount == 0 || slotCount > MaxSlotCount {
		return ErrInvalidSlotCount
	}
	if t.readerCount+t.writerCount > 0 {
		return ErrBusy
	}

	t.slotSize = slotSize
	t.slotCount = slotCount
	t.reset()

	t.logger.Debug("topic configured",
		slog.String("topic", t.name),
		slog.Uint64("slot_size", uint64(slotSize)),
		slog.Uint64("slot_count", uint64(slotCount)))

	return nil
}

// reset drops the backing buffer and rewinds all shared cursors. Must be
// called with mu held and no handles open.
func (t *Topic) reset() {
	t.buf = nil
	t.writeSeq = 0
	t.tailSeq = 0
	t.pendingReaders = 0
}

// Destroy marks the topic unusable and releases its buffer. It fails with
// ErrBusy while any handle remains open; the control plane must close or
// revoke handles first. Subsequent operations return ErrClosed.
func (t *Topic) Destroy() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		return ErrClosed
	}
	if t.readerCount+t.writerCount > 0 {
		return ErrBusy
	}

	t.destroyed = true
	t.reset()

	// Unpark anyone still selecting on a previously obtained signal channel.
	t.signalReadable()
	t.signalWritable()

	t.logger.Debug("topic destroyed", slog.String("topic", t.name))
	return nil
}
