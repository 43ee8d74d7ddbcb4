package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/speckview/pkg/graph"
	"github.com/matzehuels/speckview/pkg/pipeline"
)

// parseCommand creates the parse command.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		output  string
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "parse <root.speck>",
		Short: "Read a speck source tree into a module snapshot",
		Long: `Read a speck source tree into a module snapshot.

The argument is the root module file; child modules are discovered from
mod declarations and loaded from <dir>/<name>/<name>.speck. The snapshot
is written as JSON.

Examples:
  speckview parse project/project.speck
  speckview parse project/project.speck -o snapshot.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.Options{
				RootFile: args[0],
				Refresh:  refresh,
				Logger:   c.Logger,
			}

			prog := newProgress(c.Logger)
			snap, err := runner.Parse(cmd.Context(), opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Parsed %d modules with %d call references",
				snap.ModuleCount(), len(snap.FunctionEdges)))

			return writeSnapshot(snap, output, c.Logger)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching entirely")

	return cmd
}

// writeSnapshot serializes snap as JSON to the specified path (or stdout if empty).
func writeSnapshot(snap *graph.Snapshot, path string, logger interface{ Infof(string, ...any) }) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := graph.WriteSnapshot(snap, out); err != nil {
		return err
	}
	if path != "" {
		logger.Infof("Wrote snapshot to %s", path)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
