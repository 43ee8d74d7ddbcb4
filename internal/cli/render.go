package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/speckview/pkg/pipeline"
	"github.com/matzehuels/speckview/pkg/render"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formats    string
		expanded   string
		all        bool
		configFile string
		refresh    bool
		noCache    bool
		dotSVG     bool
	)

	cmd := &cobra.Command{
		Use:   "render <root.speck>",
		Short: "Render a speck source tree as SVG, JSON, or DOT",
		Long: `Render a speck source tree as SVG, JSON, or DOT.

By default only the root module's contents are shown; pass --expanded
with a comma-separated list of module paths to open more, or --all to
open everything. With multiple formats the output path is treated as a
basename and one file per format is written.

Examples:
  speckview render project/project.speck -o diagram.svg
  speckview render project/project.speck --expanded project/core,project/api
  speckview render project/project.speck --all --format svg,json,dot -o out`,
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
				Formats:    parseFormats(formats),
				Expanded:   parsePaths(expanded),
				All:        all,
				Refresh:    refresh,
				Logger:     c.Logger,
			}

			spin := newSpinnerWithContext(cmd.Context(), "Rendering "+args[0])
			spin.Start()
			result, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				if spin.Cancelled() {
					spin.Stop()
					return cmd.Context().Err()
				}
				spin.StopWithError(err.Error())
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("Rendered %d modules in %s",
				result.Stats.ModuleCount, strings.Join(opts.Formats, ", ")))

			if dotSVG {
				data, err := render.RenderDOTSVG(cmd.Context(), render.ToDOT(result.Snapshot))
				if err != nil {
					return err
				}
				result.Artifacts["dot.svg"] = data
			}

			return writeArtifacts(result.Artifacts, opts.Formats, output, c.Logger)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or basename (stdout if empty)")
	cmd.Flags().StringVarP(&formats, "format", "f", "svg", "comma-separated output formats (svg, json, dot)")
	cmd.Flags().StringVarP(&expanded, "expanded", "e", "", "comma-separated module paths to expand")
	cmd.Flags().BoolVar(&all, "all", false, "expand every module")
	cmd.Flags().StringVar(&configFile, "config", "", "TOML layout configuration file")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching entirely")
	cmd.Flags().BoolVar(&dotSVG, "dot-svg", false, "additionally render the DOT export through Graphviz")

	return cmd
}

// writeArtifacts writes rendered artifacts to disk or stdout.
//
// With a single format, path names the output file directly. With several,
// path is a basename and each artifact gets its format as extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, path string, logger interface{ Infof(string, ...any) }) error {
	single := len(artifacts) == 1

	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}

		target := path
		if target == "" {
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
			continue
		}
		if !single {
			target = artifactPath(path, format)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return err
		}
		logger.Infof("Wrote %s to %s", format, target)
	}

	// Extra artifacts outside the requested formats (e.g. dot.svg).
	for format, data := range artifacts {
		if contains(formats, format) {
			continue
		}
		target := artifactPath(path, format)
		if path == "" {
			target = "speckview." + format
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return err
		}
		logger.Infof("Wrote %s to %s", format, target)
	}

	return nil
}

// artifactPath derives a per-format path from a basename.
func artifactPath(base, format string) string {
	ext := filepath.Ext(base)
	if ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + "." + format
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
