package topic_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/goleak"

	"github.com/devpubio/devpub/core/topic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newConfigured(t *testing.T, slotSize, slotCount uint32) *topic.Topic {
	t.Helper()

	tp := topic.New("test")
	require.NoError(t, tp.Configure(slotSize, slotCount))
	return tp
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("starts unconfigured", func(t *testing.T) {
		t.Parallel()

		tp := topic.New("sensors")
		assert.Equal(t, "sensors", tp.Name())
		assert.Zero(t, tp.SlotSize())
		assert.Zero(t, tp.SlotCount())
		assert.Zero(t, tp.Capacity())
	})

	t.Run("accepts custom logger", func(t *testing.T) {
		t.Parallel()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		tp := topic.New("sensors", topic.WithLogger(logger))
		require.NotNil(t, tp)
	})

	t.Run("ignores nil logger and nil allocator", func(t *testing.T) {
		t.Parallel()

		tp := topic.New("sensors", topic.WithLogger(nil), topic.WithAllocator(nil))
		require.NoError(t, tp.Configure(4, 4))

		h, err := tp.Open(topic.Writer)
		require.NoError(t, err)
		require.NoError(t, h.Close())
	})
}

func TestConfigure(t *testing.T) {
	t.Parallel()

	t.Run("stores slot parameters", func(t *testing.T) {
		t.Parallel()

		tp := newConfigured(t, 4, 16)
		assert.Equal(t, uint32(4), tp.SlotSize())
		assert.Equal(t, uint32(16), tp.SlotCount())
		assert.Equal(t, uint32(64), tp.Capacity())
	})

	t.Run("is idempotent while no handles are open", func(t *testing.T) {
		t.Parallel()

		tp := newConfigured(t, 4, 16)
		require.NoError(t, tp.Configure(4, 16))
		assert.Equal(t, uint32(4), tp.SlotSize())
		assert.Equal(t, uint32(16), tp.SlotCount())
	})

	t.Run("rejects zero values", func(t *testing.T) {
		t.Parallel()

		tp := topic.New("test")
		require.ErrorIs(t, tp.Configure(0, 16), topic.ErrInvalidSlotSize)
		require.ErrorIs(t, tp.Configure(4, 0), topic.ErrInvalidSlotCount)
		require.ErrorIs(t, tp.SetSlotSize(0), topic.ErrInvalidSlotSize)
		require.ErrorIs(t, tp.SetSlotCount(0), topic.ErrInvalidSlotCount)
	})

	t.Run("rejects values above the ceiling", func(t *testing.T) {
		t.Parallel()

		tp := topic.New("test")
		require.ErrorIs(t, tp.SetSlotSize(topic.MaxSlotSize+1), topic.ErrInvalidSlotSize)
		require.ErrorIs(t, tp.SetSlotCount(topic.MaxSlotCount+1), topic.ErrInvalidSlotCount)
	})

	t.Run("fails with busy while handles are open", func(t *testing.T) {
		t.Parallel()

		tp := newConfigured(t, 4, 16)
		h, err := tp.Open(topic.Reader)
		require.NoError(t, err)

		require.ErrorIs(t, tp.Configure(8, 8), topic.ErrBusy)
		require.ErrorIs(t, tp.SetSlotSize(8), topic.ErrBusy)
		require.ErrorIs(t, tp.SetSlotCount(8), topic.ErrBusy)

		// Prior configuration is untouched.
		assert.Equal(t, uint32(4), tp.SlotSize())
		assert.Equal(t, uint32(16), tp.SlotCount())

		require.NoError(t, h.Close())
		require.NoError(t, tp.Configure(8, 8))
	})
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("fails before configuration", func(t *testing.T) {
		t.Parallel()

		tp := topic.New("test")
		_, err := tp.Open(topic.Reader)
		require.ErrorIs(t, err, topic.ErrNotConfigured)

		require.NoError(t, tp.SetSlotSize(4))
		_, err = tp.Open(topic.Reader)
		require.ErrorIs(t, err, topic.ErrNotConfigured)
	})

	t.Run("rejects a kind that is not reader xor writer", func(t *testing.T) {
		t.Parallel()

		tp := newConfigured(t, 4, 4)
		_, err := tp.Open(topic.Kind(0))
		require.ErrorIs(t, err, topic.ErrAccessDenied)
		_, err = tp.Open(topic.Kind(3))
		require.ErrorIs(t, err, topic.ErrAccessDenied)
	})

	t.Run("counts handles per kind", func(t *testing.T) {
		t.Parallel()

		tp := newConfigured(t, 4, 4)

		r, err := tp.Open(topic.Reader)
		require.NoError(t, err)
		w, err := tp.Open(topic.Writer)
		require.NoError(t, err)

		assert.Equal(t, uint32(1), tp.ReaderCount())
		assert.Equal(t, uint32(1), tp.WriterCount())
		assert.Equal(t, uint32(2), tp.HandleCount())
		assert.Equal(t, topic.Reader, r.Kind())
		assert.Equal(t, topic.Writer, w.Kind())
		assert.NotEqual(t, r.ID(), w.ID())
		assert.Same(t, tp, r.Topic())

		require.NoError(t, r.Close())
		require.NoError(t, w.Close())
		assert.Zero(t, tp.HandleCount())
	})

	t.Run("reports allocation failure and preserves configuration", func(t *testing.T) {
		t.Parallel()

		fail := true
		tp := topic.New("test", topic.WithAllocator(func(size int) ([]byte, error) {
			if fail {
				return nil, errors.New("allocator exhausted")
			}
			return make([]byte, size), nil
		}))
		require.NoError(t, tp.Configure(4, 4))

		_, err := tp.Open(topic.Reader)
		require.ErrorIs(t, err, topic.ErrOutOfMemory)

		// Configuration survives; a retry succeeds once allocation does.
		assert.Equal(t, uint32(4), tp.SlotSize())
		fail = false
		h, err := tp.Open(topic.Reader)
		require.NoError(t, err)
		require.NoError(t, h.Close())
	})

	t.Run("close is rejected twice", func(t *testing.T) {
		t.Parallel()

		tp := newConfigured(t, 4, 4)
		h, err := tp.Open(topic.Reader)
		require.NoError(t, err)
		require.NoError(t, h.Close())
		require.ErrorIs(t, h.Close(), topic.ErrClosed)
	})
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	t.Run("fails while handles remain open", func(t *testing.T) {
		t.Parallel()

		tp := newConfigured(t, 4, 4)
		h, err := tp.Open(topic.Writer)
		require.NoError(t, err)

		require.ErrorIs(t, tp.Destroy(), topic.ErrBusy)
		require.NoError(t, h.Close())
		require.NoError(t, tp.Destroy())
	})

	t.Run("subsequent operations report closed", func(t *testing.T) {
		t.Parallel()

		tp := newConfigured(t, 4, 4)
		require.NoError(t, tp.Destroy())

		_, err := tp.Open(topic.Reader)
		require.ErrorIs(t, err, topic.ErrClosed)
		require.ErrorIs(t, tp.Configure(4, 4), topic.ErrClosed)
		require.ErrorIs(t, tp.Destroy(), topic.ErrClosed)
	})
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "reader", topic.Reader.String())
	assert.Equal(t, "writer", topic.Writer.String())
	assert.Equal(t, "kind(7)", topic.Kind(7).String())
}
