package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tweetfeed/app"
	"tweetfeed/config"
	"tweetfeed/database"
	"tweetfeed/handlers"
	"tweetfeed/models"
	"tweetfeed/routes"
	"tweetfeed/tweets"
	"tweetfeed/utils"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}

// run executes the command line in args and always releases the database.
func run(args []string, stdout io.Writer) error {
	root, c := newRootCmd()
	defer c.teardown()
	root.SetArgs(args)
	root.SetOut(stdout)
	return root.Execute()
}

// cli holds what PersistentPreRunE sets up for the subcommands.
type cli struct {
	envFile string
	dbPath  string
	key     string
	verbose bool

	app     *app.App
	storage *database.SQLiteStorage
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:   "tweetfeed",
		Short: "Fan page tweet feed",
		Long: `tweetfeed keeps a small feed of posts in a local SQLite file.

Run "tweetfeed serve" for the web page and JSON API, or use the
subcommands to post, like, retweet, delete, share, list and export from the
shell.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.envFile, "env", ".env", "dotenv file to load")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "SQLite database path (overrides TWEETS_DB_PATH)")
	root.PersistentFlags().StringVar(&c.key, "key", "", "storage key of the feed (overrides TWEETS_STORAGE_KEY)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.serveCmd(),
		c.listCmd(),
		c.postCmd(),
		c.likeCmd(),
		c.retweetCmd(),
		c.deleteCmd(),
		c.shareCmd(),
		c.exportCmd(),
	)
	return root, c
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	if c.key != "" {
		cfg.StorageKey = c.key
	}

	zcfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if c.verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	storage, err := database.Open(cfg.DBPath, cfg.StorageQuota, logger)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	c.storage = storage

	store := tweets.NewStore(storage, cfg.StorageKey, tweets.WithLogger(logger))
	c.app = app.New(store, logger, cfg)
	return nil
}

func (c *cli) teardown() {
	if c.storage != nil {
		if err := c.storage.Close(); err != nil {
			c.app.Logger.Warn("Error closing database", zap.Error(err))
		}
		c.storage = nil
	}
	if c.app != nil {
		_ = c.app.Logger.Sync()
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id %q", s)
	}
	return id, nil
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the feed page, JSON API and websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.app.Config.Addr
			}
			srv := &http.Server{
				Addr:         addr,
				Handler:      routes.NewRouter(c.app),
				ReadTimeout:  c.app.Config.ReadTimeout,
				WriteTimeout: c.app.Config.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				c.app.Logger.Info("Listening", zap.String("addr", addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			c.app.Logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides TWEETS_ADDR)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var filter, query string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := tweets.ParseFilter(filter)
			if err != nil {
				return err
			}
			posts, err := c.app.Store.LoadAll()
			if err != nil {
				return err
			}
			posts = tweets.ApplyView(posts, f, query)
			if asJSON {
				return tweets.WriteJSON(cmd.OutOrStdout(), posts)
			}
			if len(posts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No results")
				return nil
			}
			for _, p := range posts {
				printPost(cmd.OutOrStdout(), c.app.Store, p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "all, media or likes")
	cmd.Flags().StringVarP(&query, "search", "s", "", "case-insensitive search in author and content")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printPost(w io.Writer, store *tweets.Store, p models.Post) {
	heart := "🤍"
	if p.Liked {
		heart = "❤️"
	}
	fmt.Fprintf(w, "[%d] %s %s · %s\n", p.ID, utils.AvatarOrDefault(p.Avatar), p.Author, store.FormatRelativeDate(p.Date))
	if p.Content != "" {
		fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(p.Content, "\n", "\n    "))
	}
	if p.HasImage() {
		fmt.Fprintln(w, "    [image]")
	}
	fmt.Fprintf(w, "    💬 %d  🔁 %d  %s %d\n", p.Replies, p.Retweets, heart, p.Likes)
}

func (c *cli) postCmd() *cobra.Command {
	var in models.NewPost
	var imagePath string
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Author = strings.TrimSpace(in.Author)
			in.Content = strings.TrimSpace(in.Content)
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return err
				}
				uri, err := utils.ImageDataURI(data)
				if err != nil {
					return fmt.Errorf("%s: %w", imagePath, err)
				}
				in.Image = &uri
			}
			if errs, ok := handlers.ValidatePost(in.Author, in.Content, in.Image); !ok {
				msgs := make([]string, 0, len(errs))
				for field, msg := range errs {
					msgs = append(msgs, field+": "+msg)
				}
				slices.Sort(msgs)
				return fmt.Errorf("invalid post: %s", strings.Join(msgs, "; "))
			}
			if in.Avatar == "" {
				in.Avatar = utils.RandomAvatar()
			}

			post, err := c.app.Store.Create(in)
			if err != nil {
				return err
			}
			printPost(cmd.OutOrStdout(), c.app.Store, post)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Author, "author", "a", "", "your name")
	cmd.Flags().StringVarP(&in.Content, "content", "c", "", "post text")
	cmd.Flags().StringVar(&imagePath, "image", "", "image file to attach (max 5 MB)")
	cmd.Flags().StringVar(&in.Avatar, "avatar", "", "avatar glyph (random when empty)")
	return cmd
}

func (c *cli) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like [id]",
		Short: "Like or unlike a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			post, ok, err := c.app.Store.ToggleLike(id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("post %d not found", id)
			}
			printPost(cmd.OutOrStdout(), c.app.Store, post)
			return nil
		},
	}
}

func (c *cli) retweetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retweet [id]",
		Short: "Repost a post as a new one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			post, ok, err := c.app.Store.Retweet(id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("post %d not found", id)
			}
			printPost(cmd.OutOrStdout(), c.app.Store, post)
			return nil
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Store.Remove(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", id)
			return nil
		},
	}
}

func (c *cli) shareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share [id]",
		Short: "Print a post as shareable text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			post, ok, err := c.app.Store.Get(id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("post %d not found", id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tweets.ShareText(post))
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the feed as pretty JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "-" {
				return c.app.Store.Export(cmd.OutOrStdout())
			}
			if out == "" {
				out = c.app.Store.ExportFilename()
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := c.app.Store.Export(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default tweets-backup-<date>.json)`)
	return cmd
}
