package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/spots/internal/capture"
	"github.com/nikbrunner/spots/internal/coordinator"
	"github.com/nikbrunner/spots/internal/messaging"
	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/server"
)

var (
	listenAddr  string
	serveWatch  bool
	snapshotDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background service",
	Long: `Run the background service: the message endpoint the capture side talks
to, the live feed of new saves, and the shared list pages.

With --watch the snapshot directory is watched as well, and every post
found in a changed snapshot is saved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		addr := listenAddr
		if addr == "" {
			addr = e.cfg.ListenAddr
		}

		hub := server.NewHub(logger.Named("hub"))
		coord := e.coordinator(hub.OnSave)
		srv := server.New(server.NewServerParams{
			Messages: messaging.NewDispatcher(messaging.NewDispatcherParams{
				Saver:  coord,
				Items:  e.store,
				Users:  e.auth,
				Logger: logger.Named("messaging"),
			}),
			Items:  e.store,
			Shares: e.shares,
			Hub:    hub,
			Logger: logger.Named("server"),
		})

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			return srv.ListenAndServe(ctx, addr)
		})
		if serveWatch {
			w := newSnapshotWatcher(ctx, e, coord)
			g.Go(func() error {
				return w.Run(ctx)
			})
		}
		return g.Wait()
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Save posts from page snapshots as they change",
	Long: `Watch the snapshot directory for saved Instagram and TikTok pages (*.html)
and save every post found in them. Snapshots already present are
scanned once at start.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		ctx := cmd.Context()
		return newSnapshotWatcher(ctx, e, e.coordinator(nil)).Run(ctx)
	},
}

func newSnapshotWatcher(ctx context.Context, e *env, coord *coordinator.Coordinator) *capture.Watcher {
	dir := snapshotDir
	if dir == "" {
		dir = e.cfg.SnapshotDir
	}
	logger.Info("watching snapshots", zap.String("dir", dir))

	return capture.NewWatcher(capture.NewWatcherParams{
		Dir: dir,
		OnPosts: func(path string, posts []model.CapturedPost) {
			saved := saveAll(ctx, coord, posts)
			logger.Info("snapshot scanned", zap.String("path", path), zap.Int("posts", len(posts)), zap.Int("saved", saved))
		},
		Logger: logger.Named("watcher"),
	})
}

// saveAll saves the posts not stored yet and logs failures. A restart
// rescans every snapshot, so stored posts are skipped by URL.
func saveAll(ctx context.Context, coord *coordinator.Coordinator, posts []model.CapturedPost) (saved int) {
	for _, post := range posts {
		res := coord.SaveNew(ctx, post)
		switch {
		case !res.OK():
			logger.Warn("save failed", zap.String("url", post.URL), zap.Error(res.Err))
		case res.Path != coordinator.PathExisting:
			saved++
		}
	}
	return saved
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Also watch the snapshot directory")
	serveCmd.Flags().StringVar(&snapshotDir, "snapshots", "", "Snapshot directory (default from config)")
	watchCmd.Flags().StringVar(&snapshotDir, "snapshots", "", "Snapshot directory (default from config)")

	rootCmd.AddCommand(serveCmd, watchCmd)
}
