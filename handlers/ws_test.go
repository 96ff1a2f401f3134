package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetfeed/handlers"
	"tweetfeed/tweets"
)

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, cmd handlers.Command) handlers.Reply {
	t.Helper()
	require.NoError(t, conn.WriteJSON(cmd))
	var reply handlers.Reply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestWebSocket_Commands(t *testing.T) {
	srv, _, _ := newServer(t, 0)
	conn := dialWS(t, srv.URL)

	reply := roundTrip(t, conn, handlers.Command{Action: "list"})
	assert.Equal(t, "feed", reply.Type)
	assert.Equal(t, 3, reply.Total)
	require.Len(t, reply.Posts, 3)

	reply = roundTrip(t, conn, handlers.Command{Action: "like", PostID: 1})
	require.Equal(t, "feed", reply.Type)
	assert.True(t, reply.Posts[0].Liked)
	assert.Equal(t, 16, reply.Posts[0].Likes)

	reply = roundTrip(t, conn, handlers.Command{Action: "retweet", PostID: 2})
	require.Equal(t, "feed", reply.Type)
	require.NotNil(t, reply.Post)
	assert.Equal(t, tweets.RetweetAuthor, reply.Post.Author)
	assert.Equal(t, 4, reply.Total)
	assert.Equal(t, reply.Post.ID, reply.Posts[0].ID)

	reply = roundTrip(t, conn, handlers.Command{Action: "delete", PostID: reply.Post.ID})
	assert.Equal(t, 3, reply.Total)

	reply = roundTrip(t, conn, handlers.Command{Action: "list", Filter: "likes", Query: "a"})
	require.Equal(t, "feed", reply.Type)
	require.NotEmpty(t, reply.Posts)
	assert.Equal(t, int64(2), reply.Posts[0].ID)
}

func TestWebSocket_Errors(t *testing.T) {
	srv, _, _ := newServer(t, 0)
	conn := dialWS(t, srv.URL)

	reply := roundTrip(t, conn, handlers.Command{Action: "shout"})
	assert.Equal(t, "error", reply.Type)

	reply = roundTrip(t, conn, handlers.Command{Action: "retweet", PostID: 404})
	assert.Equal(t, "error", reply.Type)
	assert.Equal(t, "Post not found.", reply.Error)

	reply = roundTrip(t, conn, handlers.Command{Action: "list", Filter: "oldest"})
	assert.Equal(t, "error", reply.Type)

	// the connection survives errors
	reply = roundTrip(t, conn, handlers.Command{Action: "list"})
	assert.Equal(t, "feed", reply.Type)
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	srv, _, mem := newServer(t, 0)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://elsewhere.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {srv.URL}})
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()
	reply := roundTrip(t, conn, handlers.Command{Action: "like", PostID: 1})
	assert.Equal(t, "feed", reply.Type)
	require.NotNil(t, reply.Post)
	assert.True(t, reply.Post.Liked)
	assert.Equal(t, 1, mem.Writes())
}
