package registry

import (
	"errors"
	"io"
	"log/slog"
	"math/bits"
	"slices"
	"sync"

	"github.com/devpubio/devpub/core/topic"
)

const (
	// DefaultMaxTopics is the default registry capacity.
	DefaultMaxTopics = 256

	// MaxNameLength is the longest permitted topic name in bytes.
	MaxNameLength = 256
)

// Info is an attribute snapshot of a registered topic, the readback surface
// for inspection tools.
type Info struct {
	Name      string `json:"name"`
	ID        int    `json:"id"`
	SlotSize  uint32 `json:"slot_size"`
	SlotCount uint32 `json:"slot_count"`
	Readers   uint32 `json:"readers"`
	Writers   uint32 `json:"writers"`
}

type entry struct {
	topic *topic.Topic
	id    int
}

// Registry owns all topics of one control plane. Safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	topics    map[string]entry
	ids       []uint64 // bitmap of identifiers in use, lowest free wins
	maxTopics int

	topicOpts []topic.Option
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxTopics caps the number of concurrently registered topics.
// Default is DefaultMaxTopics.
func WithMaxTopics(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxTopics = n
		}
	}
}

// WithLogger sets a structured logger for control-plane events.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTopicOptions sets options applied to every topic the registry creates,
// such as a shared allocator or logger.
func WithTopicOptions(opts ...topic.Option) Option {
	return func(r *Registry) {
		r.topicOpts = append(r.topicOpts, opts...)
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		topics:    make(map[string]entry),
		maxTopics: DefaultMaxTopics,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.ids = make([]uint64, (r.maxTopics+63)/64)
	return r
}

// reserveID claims the lowest free identifier, or -1 when all are taken.
// Must be called with mu held.
func (r *Registry) reserveID() int {
	for i, word := range r.ids {
		if word == ^uint64(0) {
			continue
		}
		bit := bits.TrailingZeros64(^word)
		id := i*64 + bit
		if id >= r.maxTopics {
			break
		}
		r.ids[i] |= 1 << bit
		return id
	}
	return -1
}

// releaseID marks an identifier as available again. Must be called with mu held.
func (r *Registry) releaseID(id int) {
	r.ids[id/64] &^= 1 << (id % 64)
}

// Create registers a new unconfigured topic under a unique name and reserves
// an identifier for it. The name must be non-empty and at most MaxNameLength
// bytes.
func (r *Registry) Create(name string) (*topic.Topic, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return nil, ErrNameTooLong
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.topics[name]; ok {
		return nil, ErrTopicExists
	}

	id := r.reserveID()
	if id < 0 {
		return nil, ErrTooManyTopics
	}

	opts := append([]topic.Option{topic.WithLogger(r.logger)}, r.topicOpts...)
	tp := topic.New(name, opts...)
	r.topics[name] = entry{topic: tp, id: id}

	r.logger.Info("created topic",
		slog.String("topic", name),
		slog.Int("id", id))

	return tp, nil
}

// Get returns the topic registered under name.
func (r *Registry) Get(name string) (*topic.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.topics[name]
	if !ok {
		return nil, ErrTopicNotFound
	}
	return e.topic, nil
}

// Info returns the attribute snapshot of the topic registered under name.
func (r *Registry) Info(name string) (Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.topics[name]
	if !ok {
		return Info{}, ErrTopicNotFound
	}
	return snapshot(e), nil
}

// List returns attribute snapshots of all registered topics, sorted by name.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.topics))
	for _, e := range r.topics {
		infos = append(infos, snapshot(e))
	}

	slices.SortFunc(infos, func(a, b Info) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})

	return infos
}

// Len returns the number of registered topics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics)
}

// Remove destroys the topic registered under name and releases its
// identifier. It fails with ErrTopicBusy while the topic has open handles;
// callers must close or revoke them first.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.topics[name]
	if !ok {
		return ErrTopicNotFound
	}

	if err := e.topic.Destroy(); err != nil {
		if errors.Is(err, topic.ErrBusy) {
			return ErrTopicBusy
		}
		return err
	}

	delete(r.topics, name)
	r.releaseID(e.id)

	r.logger.Info("removed topic",
		slog.String("topic", name),
		slog.Int("id", e.id))

	return nil
}

func snapshot(e entry) Info {
	return Info{
		Name:      e.topic.Name(),
		ID:        e.id,
		SlotSize:  e.topic.SlotSize(),
		SlotCount: e.topic.SlotCount(),
		Readers:   e.topic.ReaderCount(),
		Writers:   e.topic.WriterCount(),
	}
}
