package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukerupert/julg/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// exerciseStore runs the shared Store contract against an implementation.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key leaves default", func(t *testing.T) {
		dst := sample{Name: "default"}
		found, err := s.Get(ctx, "missing", &dst)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, "default", dst.Name)
	})

	t.Run("set then get round trips", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "sample", sample{Name: "a", Items: []string{"x"}}))

		var got sample
		found, err := s.Get(ctx, "sample", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, sample{Name: "a", Items: []string{"x"}}, got)
	})

	t.Run("set replaces whole value", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "sample", sample{Name: "b"}))

		var got sample
		_, err := s.Get(ctx, "sample", &got)
		require.NoError(t, err)
		assert.Equal(t, "b", got.Name)
		assert.Nil(t, got.Items)
	})

	t.Run("set many writes every key", func(t *testing.T) {
		require.NoError(t, s.SetMany(ctx, map[string]any{
			"orders":  []int{3, 2, 1},
			"members": []string{"ana@julg.com"},
		}))

		var orders []int
		var members []string
		_, err := s.Get(ctx, "orders", &orders)
		require.NoError(t, err)
		_, err = s.Get(ctx, "members", &members)
		require.NoError(t, err)

		assert.Equal(t, []int{3, 2, 1}, orders)
		assert.Equal(t, []string{"ana@julg.com"}, members)
	})

	t.Run("set many with unencodable value writes nothing", func(t *testing.T) {
		err := s.SetMany(ctx, map[string]any{
			"orders": []int{9},
			"broken": make(chan int),
		})
		require.Error(t, err)

		var orders []int
		_, err = s.Get(ctx, "orders", &orders)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2, 1}, orders)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "sample"))
		require.NoError(t, s.Delete(ctx, "sample"))

		found, err := s.Get(ctx, "sample", &sample{})
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "julg.json")

	s, err := NewLocalStore(path)
	require.NoError(t, err)
	exerciseStore(t, s)

	t.Run("reopen sees persisted data", func(t *testing.T) {
		reopened, err := NewLocalStore(path)
		require.NoError(t, err)

		var members []string
		found, err := reopened.Get(context.Background(), "members", &members)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"ana@julg.com"}, members)
	})
}

func TestLocalStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "julg.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewLocalStore(path)
	require.Error(t, err)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, codeInternal, se.ErrorCode())
}

func TestLocalStore_RequiresPath(t *testing.T) {
	_, err := NewLocalStore("")
	assert.Equal(t, ErrFilePathRequired, err)
}

func TestNew_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, internal.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(ctx, internal.StoreConfig{Driver: "file", Path: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	_, err = New(ctx, internal.StoreConfig{Driver: "postgres"})
	assert.Equal(t, ErrDatabaseURLRequired, err)

	_, err = New(ctx, internal.StoreConfig{Driver: "redis"})
	assert.Equal(t, ErrRedisURLRequired, err)

	_, err = New(ctx, internal.StoreConfig{Driver: "etcd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver: etcd")
}

func TestOpenRedisStore_InvalidURL(t *testing.T) {
	_, err := OpenRedisStore(context.Background(), "not-a-redis-url", "julg:")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis URL")
}
