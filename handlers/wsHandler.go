package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tweetfeed/app"
	"tweetfeed/models"
	"tweetfeed/tweets"
)

// Command is one action sent by the viewer over the websocket.
type Command struct {
	Action string `json:"action"` // list, like, delete, retweet
	PostID int64  `json:"post_id,omitempty"`
	Filter string `json:"filter,omitempty"`
	Query  string `json:"query,omitempty"`
}

// Reply answers exactly one Command, on the connection that sent it.
type Reply struct {
	Type   string        `json:"type"` // feed or error
	Action string        `json:"action"`
	Error  string        `json:"error,omitempty"`
	Total  int           `json:"total"`
	Posts  []models.Post `json:"posts"`
	Post   *models.Post  `json:"post,omitempty"`
}

const (
	wsReadLimit  = 4096
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// upgrader keeps the default origin check: browsers may only connect from a
// page served by this host.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type client struct {
	conn   *websocket.Conn
	app    *app.App
	logger *zap.Logger
}

// SendJSON writes v with a deadline.
func (c *client) SendJSON(v any) error {
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(v)
}

// HandleConnections upgrades to a websocket on which the viewer drives the
// feed. Each command is answered with the refreshed feed; nothing is pushed
// to other connections.
func HandleConnections(app *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			app.Logger.Warn("WebSocket upgrade error", zap.Error(err))
			return
		}
		defer conn.Close()

		c := &client{
			conn:   conn,
			app:    app,
			logger: app.Logger.With(zap.String("request_id", GetRequestID(r.Context()))),
		}
		c.logger.Debug("WebSocket connected")

		conn.SetReadLimit(wsReadLimit)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		done := make(chan struct{})
		defer close(done)
		go c.ping(done)

		for {
			var cmd Command
			if err := conn.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Warn("Error reading command", zap.Error(err))
				}
				return
			}
			if err := c.SendJSON(c.handle(cmd)); err != nil {
				c.logger.Warn("Error sending reply", zap.Error(err))
				return
			}
		}
	}
}

func (c *client) ping(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (c *client) handle(cmd Command) Reply {
	store := c.app.Store
	reply := Reply{Type: "feed", Action: cmd.Action}

	fail := func(msg string, err error) Reply {
		if err != nil {
			c.logger.Error(msg, zap.String("action", cmd.Action), zap.Int64("id", cmd.PostID), zap.Error(err))
		}
		return Reply{Type: "error", Action: cmd.Action, Error: msg}
	}

	filter, err := tweets.ParseFilter(cmd.Filter)
	if err != nil {
		return fail(err.Error(), nil)
	}

	switch cmd.Action {
	case "list":
	case "like":
		post, ok, err := store.ToggleLike(cmd.PostID)
		if err != nil {
			return fail("Failed to update like.", err)
		}
		if ok {
			reply.Post = &post
		}
	case "delete":
		if err := store.Remove(cmd.PostID); err != nil {
			return fail("Failed to delete post.", err)
		}
	case "retweet":
		post, ok, err := store.Retweet(cmd.PostID)
		if err != nil {
			return fail("Failed to retweet.", err)
		}
		if !ok {
			return fail("Post not found.", nil)
		}
		reply.Post = &post
	default:
		return fail("Unknown action.", nil)
	}

	posts, err := store.LoadAll()
	if err != nil {
		return fail("Error retrieving posts", err)
	}
	reply.Total = len(posts)
	reply.Posts = tweets.ApplyView(posts, filter, cmd.Query)
	return reply
}
