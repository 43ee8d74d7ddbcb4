// Package pipeline provides the core visualization pipeline for Speckview.
//
// This package implements the complete parse → layout → render pipeline that
// can be used by the CLI and the viewer server. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read the source tree into a module snapshot
//  2. Layout: Compute absolute box geometry for the module tree
//  3. Render: Generate output in various formats (SVG, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    RootFile: "project/project.speck",
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Parse only
//	snap, err := runner.Parse(ctx, opts)
//
//	// Layout with existing snapshot
//	geo, err := runner.ComputeLayout(ctx, snap, opts)
//
//	// Render with existing layout
//	artifacts, err := runner.Render(ctx, snap, geo, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/speckview/pkg/cache"
	"github.com/matzehuels/speckview/pkg/errors"
	"github.com/matzehuels/speckview/pkg/graph"
	"github.com/matzehuels/speckview/pkg/layout"
	"github.com/matzehuels/speckview/pkg/visibility"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for viewer requests.
type Options struct {
	// Parse options
	RootFile string `json:"root_file"`
	Refresh  bool   `json:"refresh,omitempty"`

	// Layout options
	ConfigFile string        `json:"config_file,omitempty"` // optional TOML layout configuration
	Config     layout.Config `json:"config,omitempty"`      // effective configuration; zero value means load defaults

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Expanded []string `json:"expanded,omitempty"` // module paths whose contents are shown
	All      bool     `json:"all,omitempty"`      // expand every module

	// Runtime options (not serialized)
	Logger   *log.Logger     `json:"-"`
	Measurer layout.Measurer `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the parsed module tree.
	Snapshot *graph.Snapshot

	// SnapshotHash is the content hash of the serialized snapshot.
	SnapshotHash string

	// Geometry contains the computed box positions.
	Geometry *layout.Geometry

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ModuleCount   int
	FunctionCount int
	EdgeCount     int
	ParseTime     time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool // Whether parse result came from cache
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if err := errors.ValidateRootFile(o.RootFile); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForLayout validates and sets defaults for layout computation.
// The zero configuration is replaced by the built-in defaults, or by the
// TOML file when ConfigFile is set.
func (o *Options) ValidateForLayout() error {
	if o.Config == (layout.Config{}) {
		if o.ConfigFile != "" {
			cfg, err := layout.LoadConfig(o.ConfigFile)
			if err != nil {
				return err
			}
			o.Config = cfg
		} else {
			o.Config = layout.DefaultConfig()
		}
	}
	if err := o.Config.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout configuration")
	}
	if o.Measurer == nil {
		o.Measurer = layout.Monospace{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	for _, path := range o.Expanded {
		if err := errors.ValidateModulePath(path); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ExpandedSet builds the expansion state the render stage uses. The root
// is always expanded; with All set, every module in the snapshot is.
func (o *Options) ExpandedSet(snap *graph.Snapshot) visibility.ExpandedSet {
	set := visibility.NewExpandedSet(snap.Root)
	if o.All {
		set.ExpandAll(snap)
		return set
	}
	for _, path := range o.Expanded {
		set.Expand(path)
	}
	return set
}

// ExpandedHash returns a stable fingerprint of the expansion inputs for
// artifact cache keys.
func (o *Options) ExpandedHash() string {
	if o.All {
		return cache.Hash([]byte("all"))
	}
	paths := slices.Clone(o.Expanded)
	slices.Sort(paths)
	return cache.Hash([]byte(strings.Join(paths, "\n")))
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	data, _ := layout.MarshalConfig(o.Config)
	return cache.LayoutKeyOpts{
		ConfigHash: cache.Hash(data),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:       format,
		ExpandedHash: o.ExpandedHash(),
	}
}

// String summarizes the options for logging.
func (o *Options) String() string {
	return fmt.Sprintf("root=%s formats=%v expanded=%d all=%t",
		o.RootFile, o.Formats, len(o.Expanded), o.All)
}
