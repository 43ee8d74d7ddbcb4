// Package layout computes absolute pixel geometry for every module and
// function box in a graph snapshot.
//
// Layout runs in exactly two passes over the complete tree: a bottom-up
// sizing pass (children before parent, sizes derived from measured label
// text) and a top-down positioning pass (parent places its children).
// Partial layout is not supported - both passes must see the whole
// structure before any geometry is valid. Given the same tree, the same
// configuration, and the same text measurer, the result is bit-for-bit
// reproducible.
//
// Expand/collapse never reaches this package: visibility only toggles what
// is painted, so layout is recomputed solely when the source graph changes.
package layout

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the fixed spacing constants used by the layout engine and
// the router. Every value affects rendered spacing only, never structural
// correctness. The zero value is not usable - start from [DefaultConfig].
type Config struct {
	// HeaderHeight is the space reserved at the top of every module box
	// for its label.
	HeaderHeight float64 `toml:"headerHeight"`

	// FunctionRowHeight is the height of each function box.
	FunctionRowHeight float64 `toml:"functionRowHeight"`

	// FunctionRowGap is the vertical gap between stacked function boxes.
	FunctionRowGap float64 `toml:"functionRowGap"`

	// ModuleGap is the horizontal gap between sibling module boxes.
	ModuleGap float64 `toml:"moduleGap"`

	// SectionGap separates a module's function stack from its children,
	// applied only when both are non-empty.
	SectionGap float64 `toml:"sectionGap"`

	// FunctionPaddingX pads function labels horizontally on both sides.
	FunctionPaddingX float64 `toml:"functionPaddingX"`

	// MinModuleWidth is the minimum content width of a module box.
	MinModuleWidth float64 `toml:"minModuleWidth"`

	// ArrowClearance is the gap the router leaves between an arrow tip
	// and its target box, making room for the arrowhead marker.
	ArrowClearance float64 `toml:"arrowClearance"`

	// CornerRadius rounds the right-angle turns of routed arrows.
	CornerRadius float64 `toml:"cornerRadius"`

	// ModulePaddingX pads module content horizontally on both sides.
	ModulePaddingX float64 `toml:"modulePaddingX"`

	// ModulePaddingBottom pads module content at the bottom.
	ModulePaddingBottom float64 `toml:"modulePaddingBottom"`

	// LabelFontSize is the font size used to measure module labels.
	LabelFontSize float64 `toml:"labelFontSize"`

	// FunctionFontSize is the font size used to measure function labels.
	FunctionFontSize float64 `toml:"functionFontSize"`

	// RouteMargin is the vertical clearance a detour keeps from the
	// blocking boxes it routes around.
	RouteMargin float64 `toml:"routeMargin"`

	// ObstacleGap is the horizontal clearance between a detour's vertical
	// segments and the blocking boxes' combined span.
	ObstacleGap float64 `toml:"obstacleGap"`

	// MinRunIn is the minimum straight run a detour keeps before reaching
	// its target.
	MinRunIn float64 `toml:"minRunIn"`
}

// DefaultConfig returns the standard spacing constants. The values mirror
// the reference viewer so diagrams look identical across hosts.
func DefaultConfig() Config {
	return Config{
		HeaderHeight:        38,
		FunctionRowHeight:   30,
		FunctionRowGap:      10,
		ModuleGap:           60,
		SectionGap:          20,
		FunctionPaddingX:    14,
		MinModuleWidth:      80,
		ArrowClearance:      10,
		CornerRadius:        6,
		ModulePaddingX:      30,
		ModulePaddingBottom: 50,
		LabelFontSize:       13,
		FunctionFontSize:    12,
		RouteMargin:         15,
		ObstacleGap:         20,
		MinRunIn:            15,
	}
}

// LoadConfig reads a TOML config file, overlaying it on [DefaultConfig].
// Fields absent from the file keep their defaults; the merged result is
// validated before being returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every spacing constant is positive.
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"headerHeight", c.HeaderHeight},
		{"functionRowHeight", c.FunctionRowHeight},
		{"functionRowGap", c.FunctionRowGap},
		{"moduleGap", c.ModuleGap},
		{"sectionGap", c.SectionGap},
		{"functionPaddingX", c.FunctionPaddingX},
		{"minModuleWidth", c.MinModuleWidth},
		{"arrowClearance", c.ArrowClearance},
		{"cornerRadius", c.CornerRadius},
		{"modulePaddingX", c.ModulePaddingX},
		{"modulePaddingBottom", c.ModulePaddingBottom},
		{"labelFontSize", c.LabelFontSize},
		{"functionFontSize", c.FunctionFontSize},
		{"routeMargin", c.RouteMargin},
		{"obstacleGap", c.ObstacleGap},
		{"minRunIn", c.MinRunIn},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", check.name, check.value)
		}
	}
	return nil
}
