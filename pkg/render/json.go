package render

import (
	"encoding/json"

	"github.com/matzehuels/speckview/pkg/graph"
	"github.com/matzehuels/speckview/pkg/layout"
	"github.com/matzehuels/speckview/pkg/route"
	"github.com/matzehuels/speckview/pkg/visibility"
)

// Document is the JSON artifact: everything a client needs to draw the
// diagram without recomputing layout or routing.
type Document struct {
	Snapshot *graph.Snapshot  `json:"snapshot"`
	Geometry *layout.Geometry `json:"geometry"`
	Expanded []string         `json:"expanded"`
	Arrows   []route.Arrow    `json:"arrows"`
	Version  int64            `json:"version,omitempty"`
}

// BuildDocument assembles a Document for the given expansion state.
func BuildDocument(snap *graph.Snapshot, geo *layout.Geometry, set visibility.ExpandedSet, cfg layout.Config, version int64) *Document {
	return &Document{
		Snapshot: snap,
		Geometry: geo,
		Expanded: set.Paths(),
		Arrows:   route.Plan(snap, geo, set, cfg),
		Version:  version,
	}
}

// RenderJSON renders a Document as indented JSON.
func RenderJSON(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
