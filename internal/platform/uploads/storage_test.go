package uploads

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phrazzld/findmypet-api/internal/config"
	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(config.UploadsConfig{
		Dir:       filepath.Join(t.TempDir(), "uploads"),
		URLPrefix: "/static/uploads/",
	}, nil)
	require.NoError(t, err)
	return s
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"My cheese.jpg", "My_cheese.jpg"},
		{"../../../etc/passwd", "etc_passwd"},
		{"i contain cool ümläuts.txt", "i_contain_cool_umlauts.txt"},
		{`C:\photos\cat.png`, "C_photos_cat.png"},
		{"...hidden.png", "hidden.png"},
		{"кот.png", "png"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestAccept(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("allowed extensions regardless of case", func(t *testing.T) {
		s := newTestStorage(t)
		for _, name := range []string{"photo.png", "photo.PNG", "a.Jpg", "b.jpeg", "c.gif"} {
			ref, err := s.Accept(ctx, name, strings.NewReader("data"))
			require.NoError(t, err)
			require.NotNil(t, ref, name)
			assert.True(t, strings.HasPrefix(*ref, "/static/uploads/"), *ref)

			stored := strings.TrimPrefix(*ref, "/static/uploads/")
			prefix, rest, ok := strings.Cut(stored, "_")
			require.True(t, ok)
			assert.Len(t, prefix, 32)
			assert.Equal(t, SanitizeFilename(name), rest)

			body, err := os.ReadFile(filepath.Join(s.Dir(), stored))
			require.NoError(t, err)
			assert.Equal(t, "data", string(body))
		}
	})

	t.Run("disallowed files are dropped silently", func(t *testing.T) {
		s := newTestStorage(t)
		for _, name := range []string{"photo.exe", "noext", "", "archive.png.zip"} {
			ref, err := s.Accept(ctx, name, strings.NewReader("data"))
			assert.NoError(t, err)
			assert.Nil(t, ref, name)
		}
		entries, err := os.ReadDir(s.Dir())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("same name twice does not collide", func(t *testing.T) {
		s := newTestStorage(t)
		a, err := s.Accept(ctx, "cat.png", strings.NewReader("1"))
		require.NoError(t, err)
		b, err := s.Accept(ctx, "cat.png", strings.NewReader("2"))
		require.NoError(t, err)
		assert.NotEqual(t, *a, *b)
	})

	t.Run("name without usable characters keeps its extension", func(t *testing.T) {
		s := newTestStorage(t)
		ref, err := s.Accept(ctx, "кот.png", strings.NewReader("1"))
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.True(t, strings.HasSuffix(*ref, "_image.png"), *ref)
	})

	t.Run("long names are shortened to fit the reference column", func(t *testing.T) {
		s := newTestStorage(t)
		ref, err := s.Accept(ctx, strings.Repeat("a", 300)+".PNG", strings.NewReader("1"))
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.LessOrEqual(t, len(*ref), domain.MaxImageURLLength)
		assert.True(t, strings.HasSuffix(*ref, "a.PNG"), *ref)

		_, err = os.Stat(filepath.Join(s.Dir(), strings.TrimPrefix(*ref, "/static/uploads/")))
		assert.NoError(t, err)
	})
}

func TestTruncateStem(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cat.png", truncateStem("cat.png", "png", 20))
	assert.Equal(t, "abcde.png", truncateStem("abcdefghij.png", "png", 9))
	assert.Equal(t, "ab.jpeg", truncateStem("ab__________.jpeg", "jpeg", 10))
	assert.Equal(t, "image.gif", truncateStem("...........gif", "gif", 10))
}

func TestNewLocalStorage_PrefixTooLong(t *testing.T) {
	t.Parallel()

	_, err := NewLocalStorage(config.UploadsConfig{
		Dir:       t.TempDir(),
		URLPrefix: "/" + strings.Repeat("p", 230),
	}, nil)
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStorage(t)

	ref, err := s.Accept(ctx, "cat.png", strings.NewReader("1"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, *ref))
	_, err = os.Stat(filepath.Join(s.Dir(), strings.TrimPrefix(*ref, "/static/uploads/")))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(ctx, *ref), "removing twice is fine")
	assert.ErrorIs(t, s.Remove(ctx, "/elsewhere/cat.png"), ErrForeignReference)
	assert.ErrorIs(t, s.Remove(ctx, "/static/uploads/../secret"), ErrForeignReference)
}
