package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishPostsForm(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		paths []string
		chats []string
		texts []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		paths = append(paths, r.URL.Path)
		chats = append(chats, r.PostForm.Get("chat_id"))
		texts = append(texts, r.PostForm.Get("text"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier("TOKEN", "42").WithAPIBase(server.URL, server.Client())
	require.NoError(t, n.Publish(context.Background(), "Daily HOTS sync complete."))

	assert.Equal(t, []string{"/botTOKEN/sendMessage"}, paths)
	assert.Equal(t, []string{"42"}, chats)
	assert.Equal(t, []string{"Daily HOTS sync complete."}, texts)
}

func TestPublishSurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewNotifier("TOKEN", "42").WithAPIBase(server.URL, server.Client())
	err := n.Publish(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestPublishRequiresCredentials(t *testing.T) {
	t.Parallel()

	n := NewNotifier("", "42")
	assert.False(t, n.Configured())
	assert.ErrorIs(t, n.Publish(context.Background(), "x"), ErrMisconfigured)
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	text := strings.Repeat("a", 6) + "\n" + strings.Repeat("b", 6)
	assert.Equal(t, []string{"aaaaaa", "bbbbbb"}, splitMessage(text, 10))

	long := strings.Repeat("x", 25)
	chunks := splitMessage(long, 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, chunks)
}
