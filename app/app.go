package app

import (
	"go.uber.org/zap"

	"tweetfeed/config"
	"tweetfeed/tweets"
)

// App carries the dependencies shared by HTTP handlers and CLI commands.
type App struct {
	Store  *tweets.Store
	Logger *zap.Logger
	Config config.Config
}

// New bundles store and logger. A nil logger discards output.
func New(store *tweets.Store, logger *zap.Logger, cfg config.Config) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{Store: store, Logger: logger, Config: cfg}
}
