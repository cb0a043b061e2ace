package registry_test

import (
	"strings"
	"testing"

	"github.com/devpubio/devpub/core/registry"
	"github.com/devpubio/devpub/core/topic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("registers a topic and assigns the lowest free id", func(t *testing.T) {
		t.Parallel()

		reg := registry.New()

		_, err := reg.Create("alpha")
		require.NoError(t, err)
		_, err = reg.Create("beta")
		require.NoError(t, err)

		a, err := reg.Info("alpha")
		require.NoError(t, err)
		b, err := reg.Info("beta")
		require.NoError(t, err)

		assert.Equal(t, 0, a.ID)
		assert.Equal(t, 1, b.ID)
		assert.Equal(t, 2, reg.Len())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		reg := registry.New()
		_, err := reg.Create("")
		require.ErrorIs(t, err, registry.ErrEmptyName)
	})

	t.Run("rejects overlong name", func(t *testing.T) {
		t.Parallel()

		reg := registry.New()
		_, err := reg.Create(strings.Repeat("x", registry.MaxNameLength+1))
		require.ErrorIs(t, err, registry.ErrNameTooLong)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		t.Parallel()

		reg := registry.New()
		_, err := reg.Create("alpha")
		require.NoError(t, err)
		_, err = reg.Create("alpha")
		require.ErrorIs(t, err, registry.ErrTopicExists)
	})

	t.Run("enforces the topic limit", func(t *testing.T) {
		t.Parallel()

		reg := registry.New(registry.WithMaxTopics(2))
		_, err := reg.Create("a")
		require.NoError(t, err)
		_, err = reg.Create("b")
		require.NoError(t, err)
		_, err = reg.Create("c")
		require.ErrorIs(t, err, registry.ErrTooManyTopics)
	})

	t.Run("released ids are reused lowest first", func(t *testing.T) {
		t.Parallel()

		reg := registry.New()
		for _, name := range []string{"a", "b", "c"} {
			_, err := reg.Create(name)
			require.NoError(t, err)
		}

		require.NoError(t, reg.Remove("b"))

		_, err := reg.Create("d")
		require.NoError(t, err)

		d, err := reg.Info("d")
		require.NoError(t, err)
		assert.Equal(t, 1, d.ID)
	})
}

func TestGet(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	created, err := reg.Create("alpha")
	require.NoError(t, err)

	got, err := reg.Get("alpha")
	require.NoError(t, err)
	assert.Same(t, created, got)

	_, err = reg.Get("missing")
	require.ErrorIs(t, err, registry.ErrTopicNotFound)
}

func TestList(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	for _, name := range []string{"zeta", "alpha", "mu"} {
		tp, err := reg.Create(name)
		require.NoError(t, err)
		require.NoError(t, tp.Configure(4, 8))
	}

	infos := reg.List()
	require.Len(t, infos, 3)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "mu", infos[1].Name)
	assert.Equal(t, "zeta", infos[2].Name)
	assert.Equal(t, uint32(4), infos[0].SlotSize)
	assert.Equal(t, uint32(8), infos[0].SlotCount)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	t.Run("destroys and unregisters", func(t *testing.T) {
		t.Parallel()

		reg := registry.New()
		tp, err := reg.Create("alpha")
		require.NoError(t, err)
		require.NoError(t, tp.Configure(4, 4))

		require.NoError(t, reg.Remove("alpha"))
		assert.Zero(t, reg.Len())

		// The topic itself is dead.
		_, err = tp.Open(topic.Reader)
		require.ErrorIs(t, err, topic.ErrClosed)
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		reg := registry.New()
		require.ErrorIs(t, reg.Remove("missing"), registry.ErrTopicNotFound)
	})

	t.Run("refuses while handles are open", func(t *testing.T) {
		t.Parallel()

		reg := registry.New()
		tp, err := reg.Create("alpha")
		require.NoError(t, err)
		require.NoError(t, tp.Configure(4, 4))

		h, err := tp.Open(topic.Reader)
		require.NoError(t, err)

		require.ErrorIs(t, reg.Remove("alpha"), registry.ErrTopicBusy)
		assert.Equal(t, 1, reg.Len())

		require.NoError(t, h.Close())
		require.NoError(t, reg.Remove("alpha"))
	})
}

func TestInfo(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	tp, err := reg.Create("alpha")
	require.NoError(t, err)
	require.NoError(t, tp.Configure(4, 4))

	r, err := tp.Open(topic.Reader)
	require.NoError(t, err)
	defer r.Close()
	w, err := tp.Open(topic.Writer)
	require.NoError(t, err)
	defer w.Close()

	info, err := reg.Info("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", info.Name)
	assert.Equal(t, uint32(1), info.Readers)
	assert.Equal(t, uint32(1), info.Writers)

	_, err = reg.Info("missing")
	require.ErrorIs(t, err, registry.ErrTopicNotFound)
}
