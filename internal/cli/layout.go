package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/speckview/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		configFile string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "layout <root.speck>",
		Short: "Compute box geometry for a speck source tree",
		Long: `Compute box geometry for a speck source tree.

Parses the tree, runs the two-pass layout, and writes the resulting
geometry (one box per module and function) as JSON. Layout constants can
be overridden with a TOML configuration file.

Examples:
  speckview layout project/project.speck
  speckview layout project/project.speck --config layout.toml -o geometry.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.Options{
				RootFile:   args[0],
				ConfigFile: configFile,
				Logger:     c.Logger,
			}

			snap, err := runner.Parse(cmd.Context(), opts)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			geo, err := runner.ComputeLayout(cmd.Context(), snap, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Computed %d boxes (%.0fx%.0f)",
				len(geo.Modules)+len(geo.Functions), geo.Width, geo.Height))

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(geo); err != nil {
				return err
			}
			if output != "" {
				c.Logger.Infof("Wrote geometry to %s", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&configFile, "config", "", "TOML layout configuration file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching entirely")

	return cmd
}
