package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetfeed/models"
)

type cliEnv struct {
	t  *testing.T
	db string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Setenv("LOG_LEVEL", "error")
	dir := t.TempDir()
	return &cliEnv{t: t, db: filepath.Join(dir, "tweets.db")}
}

func (e *cliEnv) run(args ...string) (string, error) {
	var out bytes.Buffer
	all := append([]string{args[0], "--db", e.db, "--env", filepath.Join(e.t.TempDir(), "none.env")}, args[1:]...)
	err := run(all, &out)
	return out.String(), err
}

func (e *cliEnv) list() []models.Post {
	out, err := e.run("list", "--json")
	require.NoError(e.t, err)
	var posts []models.Post
	require.NoError(e.t, json.Unmarshal([]byte(out), &posts))
	return posts
}

func TestCLI_ListDefaults(t *testing.T) {
	e := newCLIEnv(t)

	posts := e.list()
	require.Len(t, posts, 3)
	assert.Equal(t, int64(1), posts[0].ID)

	out, err := e.run("list", "--search", "rahma")
	require.NoError(t, err)
	assert.Contains(t, out, "[2] 🎬 Drama Lover")
	assert.NotContains(t, out, "[1]")

	out, err = e.run("list", "--search", "no such thing")
	require.NoError(t, err)
	assert.Equal(t, "No results\n", out)

	_, err = e.run("list", "--filter", "oldest")
	assert.Error(t, err)
}

func TestCLI_PostLikeRetweetDelete(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run("post", "--author", "A", "--content", "hi", "--avatar", "⭐")
	require.NoError(t, err)
	assert.Contains(t, out, "⭐ A · ")

	posts := e.list()
	require.Len(t, posts, 4)
	created := posts[0]
	assert.Equal(t, "hi", created.Content)
	id := strconv.FormatInt(created.ID, 10)

	out, err = e.run("like", id)
	require.NoError(t, err)
	assert.Contains(t, out, "❤️ 1")

	_, err = e.run("retweet", id)
	require.NoError(t, err)
	posts = e.list()
	require.Len(t, posts, 5)
	assert.Equal(t, "🔁 Retweeted: hi", posts[0].Content)

	_, err = e.run("delete", id)
	require.NoError(t, err)
	for _, p := range e.list() {
		assert.NotEqual(t, created.ID, p.ID)
	}

	_, err = e.run("retweet", "123456")
	assert.Error(t, err)
	_, err = e.run("like", "abc")
	assert.Error(t, err)
}

func TestCLI_PostLongContent(t *testing.T) {
	e := newCLIEnv(t)
	content := strings.Repeat("x", 1001)

	_, err := e.run("post", "--author", strings.Repeat("a", 51), "--content", content)
	require.NoError(t, err)
	posts := e.list()
	require.Len(t, posts, 4)
	assert.Equal(t, content, posts[0].Content)
}

func TestCLI_Share(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run("share", "2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Drama Lover: "))
	assert.Contains(t, out, "Rahma")

	_, err = e.run("share", "404")
	assert.Error(t, err)
}

func TestCLI_PostWithImage(t *testing.T) {
	e := newCLIEnv(t)
	img := filepath.Join(t.TempDir(), "pic.gif")
	require.NoError(t, os.WriteFile(img, []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"), 0o600))

	_, err := e.run("post", "--author", "A", "--image", img)
	require.NoError(t, err)

	out, err := e.run("list", "--filter", "media")
	require.NoError(t, err)
	assert.Contains(t, out, "[image]")

	notImage := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("plain text"), 0o600))
	_, err = e.run("post", "--author", "A", "--image", notImage)
	assert.Error(t, err)
}

func TestCLI_PostValidation(t *testing.T) {
	e := newCLIEnv(t)

	_, err := e.run("post", "--content", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "author")

	_, err = e.run("post", "--author", "A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content")

	assert.Len(t, e.list(), 3)
}

func TestCLI_Export(t *testing.T) {
	e := newCLIEnv(t)
	out := filepath.Join(t.TempDir(), "backup.json")

	_, err := e.run("export", "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var posts []models.Post
	require.NoError(t, json.Unmarshal(data, &posts))
	assert.Len(t, posts, 3)

	stdout, err := e.run("export", "--out", "-")
	require.NoError(t, err)
	assert.Equal(t, string(data), stdout)
}
