package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/speckview/pkg/cache"
	"github.com/matzehuels/speckview/pkg/pipeline"
	"github.com/matzehuels/speckview/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configFile string
		watch      bool
		redisURL   string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve <root.speck>",
		Short: "Host the interactive viewer for a speck source tree",
		Long: `Host the interactive viewer for a speck source tree.

Serves a browser page with the rendered diagram. Clicking a module
expands or collapses it; the page polls the source version and reloads
when any .speck file changes.

By default results are cached in memory and the source tree is watched
for changes. A Redis URL switches to a shared cache for multi-instance
deployments.

Examples:
  speckview serve project/project.speck
  speckview serve project/project.speck --addr :9000 --watch=false
  speckview serve project/project.speck --redis redis://localhost:6379/0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				store   cache.Cache
				keyer   cache.Keyer
				flusher server.Flusher
				err     error
			)
			switch {
			case noCache:
				store = cache.NewNullCache()
			case redisURL != "":
				store, err = cache.NewRedisCache(cmd.Context(), redisURL)
				if err != nil {
					return err
				}
				// Shared backend: scope keys by source tree so several
				// viewer instances can share one Redis without colliding.
				keyer = cache.NewScopedKeyer(nil, "speckview:"+args[0]+":")
			default:
				mem := cache.NewMemoryCache()
				store = mem
				flusher = mem
			}

			runner := pipeline.NewRunner(store, keyer, c.Logger)
			defer runner.Close()

			srv, err := server.New(runner, server.Options{
				Addr: addr,
				Pipeline: pipeline.Options{
					RootFile:   args[0],
					ConfigFile: configFile,
					Logger:     c.Logger,
				},
				Watch:   watch,
				Flusher: flusher,
				Logger:  c.Logger,
			})
			if err != nil {
				return err
			}

			printInfo("Serving %s", args[0])
			printDetail("http://%s", addr)
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8420", "listen address")
	cmd.Flags().StringVar(&configFile, "config", "", "TOML layout configuration file")
	cmd.Flags().BoolVar(&watch, "watch", true, "watch the source tree and flush caches on change")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for a shared cache (default: in-memory)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching entirely")

	return cmd
}
