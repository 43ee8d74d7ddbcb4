package layout

import (
	"fmt"

	"github.com/matzehuels/speckview/pkg/graph"
)

// labelPadding is the slack added to a measured module label so the text
// never touches the box edge.
const labelPadding = 8

// Box is an axis-aligned rectangle in absolute diagram coordinates.
// The origin is the top-left corner; Y grows downward.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the X coordinate of the box's right edge.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns the Y coordinate of the box's bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return b.X + b.W/2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return b.Y + b.H/2 }

// Contains reports whether other lies entirely inside b.
func (b Box) Contains(other Box) bool {
	return other.X >= b.X && other.Y >= b.Y &&
		other.Right() <= b.Right() && other.Bottom() <= b.Bottom()
}

// Geometry is the complete layout result: one box per module and one box
// per function, all in the same absolute coordinate space with the root
// module at origin (0, 0). Geometry is immutable after Compute returns.
type Geometry struct {
	Modules   map[string]Box `json:"modules"`
	Functions map[string]Box `json:"functions"`

	// Width and Height are the extents of the root module box, which by
	// the containment invariant bound the entire diagram.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoxFor looks up the box for a module path or function identity.
func (g *Geometry) BoxFor(id string) (Box, bool) {
	if graph.IsFunctionID(id) {
		b, ok := g.Functions[id]
		return b, ok
	}
	b, ok := g.Modules[id]
	return b, ok
}

// node is the mutable working tree for the two layout passes. It exists
// only inside Compute; results are copied out into the immutable Geometry.
type node struct {
	mod      graph.Module
	children []*node

	w, h       float64
	fnAreaH    float64
	sectionGap float64
}

// Compute lays out the whole snapshot and returns the geometry for every
// module and function box. It errors only when the snapshot's root is
// missing, since sizing is bottom-up and positioning top-down, and both
// passes need the complete tree.
func Compute(s *graph.Snapshot, cfg Config, m Measurer) (*Geometry, error) {
	root, ok := s.Modules[s.Root]
	if !ok {
		return nil, fmt.Errorf("layout: %w: %q", graph.ErrMissingRoot, s.Root)
	}

	tree := buildTree(s, root)
	computeSize(tree, cfg, m)

	geo := &Geometry{
		Modules:   make(map[string]Box, len(s.Modules)),
		Functions: make(map[string]Box),
	}
	computePositions(tree, 0, 0, cfg, geo)
	geo.Width = tree.w
	geo.Height = tree.h
	return geo, nil
}

func buildTree(s *graph.Snapshot, mod graph.Module) *node {
	n := &node{mod: mod}
	for _, childPath := range mod.Children {
		child, ok := s.Modules[childPath]
		if !ok {
			continue
		}
		n.children = append(n.children, buildTree(s, child))
	}
	return n
}

// computeSize is the bottom-up pass: children are sized before the parent,
// and a module's dimensions are the maximum of its label width, its widest
// function box, and the summed width of its children.
func computeSize(n *node, cfg Config, m Measurer) {
	for _, child := range n.children {
		computeSize(child, cfg, m)
	}

	labelW := m.Width(n.mod.Name, cfg.LabelFontSize) + labelPadding

	var fnMaxW float64
	for _, fn := range n.mod.Functions {
		w := m.Width(fn, cfg.FunctionFontSize) + 2*cfg.FunctionPaddingX
		if w > fnMaxW {
			fnMaxW = w
		}
	}

	var fnAreaH float64
	if len(n.mod.Functions) > 0 {
		count := float64(len(n.mod.Functions))
		fnAreaH = count*cfg.FunctionRowHeight + (count-1)*cfg.FunctionRowGap
	}

	var childrenW, childrenH float64
	for _, child := range n.children {
		childrenW += child.w
		if child.h > childrenH {
			childrenH = child.h
		}
	}
	if len(n.children) > 1 {
		childrenW += float64(len(n.children)-1) * cfg.ModuleGap
	}

	var sectionGap float64
	if fnAreaH > 0 && childrenH > 0 {
		sectionGap = cfg.SectionGap
	}

	contentW := max4(labelW, fnMaxW, childrenW, cfg.MinModuleWidth)
	n.w = contentW + 2*cfg.ModulePaddingX
	n.h = cfg.HeaderHeight + fnAreaH + sectionGap + childrenH + cfg.ModulePaddingBottom
	n.fnAreaH = fnAreaH
	n.sectionGap = sectionGap
}

// computePositions is the top-down pass: a module is placed at (x, y),
// its functions stack below the header across the full interior width,
// and its children follow left-to-right below the function stack.
func computePositions(n *node, x, y float64, cfg Config, geo *Geometry) {
	geo.Modules[n.mod.Path] = Box{X: x, Y: y, W: n.w, H: n.h}

	innerX := x + cfg.ModulePaddingX
	innerY := y + cfg.HeaderHeight
	innerW := n.w - 2*cfg.ModulePaddingX

	fnY := innerY
	for _, fn := range n.mod.Functions {
		geo.Functions[n.mod.FunctionID(fn)] = Box{
			X: innerX, Y: fnY, W: innerW, H: cfg.FunctionRowHeight,
		}
		fnY += cfg.FunctionRowHeight + cfg.FunctionRowGap
	}

	childY := innerY + n.fnAreaH + n.sectionGap
	childX := innerX
	for _, child := range n.children {
		computePositions(child, childX, childY, cfg, geo)
		childX += child.w + cfg.ModuleGap
	}
}

func max4(a, b, c, d float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	if d > m {
		m = d
	}
	return m
}
