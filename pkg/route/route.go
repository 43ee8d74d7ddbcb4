// Package route computes drawable orthogonal arrow paths between visible
// boxes, detouring around obstacles that a direct connector would cross.
//
// Routing is deliberately bounded: a path is either a single-bend
// orthogonal connector or one detour around the combined span of its
// blocking boxes. Because obstacles are axis-aligned sibling-level boxes,
// one clearance line above or below them is always enough - there is no
// iterative maze-solving. Given the same visible boxes and edges the
// router always produces identical paths.
package route

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/speckview/pkg/graph"
	"github.com/matzehuels/speckview/pkg/layout"
	"github.com/matzehuels/speckview/pkg/visibility"
)

// Arrow is one drawable edge: the resolved endpoint identities and the
// SVG path data connecting them.
type Arrow struct {
	From string `json:"from"`
	To   string `json:"to"`
	Path string `json:"path"`
}

// Plan resolves every function edge through the visibility engine and
// routes the surviving edges against the currently visible obstacle set.
// Edges that collapse to self-loops, duplicate resolved pairs, and edges
// whose endpoints have no laid-out box (dangling references) are dropped.
func Plan(snap *graph.Snapshot, geo *layout.Geometry, set visibility.ExpandedSet, cfg layout.Config) []Arrow {
	obstacles := visibility.VisibleBoxes(snap, geo, set)
	edges := visibility.ResolveEdges(snap, set)

	arrows := make([]Arrow, 0, len(edges))
	for _, e := range edges {
		src, okS := geo.BoxFor(e.From)
		dst, okD := geo.BoxFor(e.To)
		if !okS || !okD {
			continue
		}
		arrows = append(arrows, Arrow{
			From: e.From,
			To:   e.To,
			Path: ComputePath(src, dst, e.From, e.To, obstacles, cfg),
		})
	}
	return arrows
}

// ComputePath connects two boxes with an orthogonal path. When no true
// obstacle intersects the straight connector's bounding rectangle the
// path is a single-bend connector; otherwise it detours around the
// blocking boxes.
func ComputePath(src, dst layout.Box, fromID, toID string, obstacles []visibility.VisibleBox, cfg layout.Config) string {
	sx, sy, tx, ty := connectionPoints(src, dst, cfg.ArrowClearance)
	blocking := blockingBoxes(sx, sy, tx, ty, fromID, toID, obstacles)
	if len(blocking) == 0 {
		return orthogonalPath(sx, sy, tx, ty, cfg.CornerRadius)
	}
	return reroutedPath(sx, sy, tx, ty, blocking, cfg)
}

// connectionPoints picks which sides of the two boxes to connect. The
// decision compares the gaps between the bounding rectangles: when the
// horizontal gap is at least the vertical gap the boxes connect through
// their left/right sides at vertical center, otherwise through top/bottom
// at a shared X taken from their horizontal overlap (or the midpoint of
// their centers when they do not overlap), which avoids zig-zags between
// stacked boxes of different widths.
func connectionPoints(s, t layout.Box, clearance float64) (sx, sy, tx, ty float64) {
	hGap := math.Max(math.Max(t.X-s.Right(), s.X-t.Right()), 0)
	vGap := math.Max(math.Max(t.Y-s.Bottom(), s.Y-t.Bottom()), 0)

	if hGap >= vGap {
		if t.CenterX() >= s.CenterX() {
			return s.Right(), s.CenterY(), t.X - clearance, t.CenterY()
		}
		return s.X, s.CenterY(), t.Right() + clearance, t.CenterY()
	}

	overlapL := math.Max(s.X, t.X)
	overlapR := math.Min(s.Right(), t.Right())
	sharedX := (s.CenterX() + t.CenterX()) / 2
	if overlapL < overlapR {
		sharedX = (overlapL + overlapR) / 2
	}
	if t.CenterY() >= s.CenterY() {
		return sharedX, s.Bottom(), sharedX, t.Y - clearance
	}
	return sharedX, s.Y, sharedX, t.Bottom() + clearance
}

// blockingBoxes returns the obstacles whose rectangles intersect the
// connector's bounding rectangle. The endpoints' own boxes never block,
// and neither does any box that is an ancestor or descendant of either
// endpoint - nested containment is not a visual crossing.
func blockingBoxes(sx, sy, tx, ty float64, fromID, toID string, obstacles []visibility.VisibleBox) []layout.Box {
	xMin := math.Min(sx, tx) + 2
	xMax := math.Max(sx, tx) - 2
	yMin := math.Min(sy, ty) - 2
	yMax := math.Max(sy, ty) + 2

	var blocking []layout.Box
	for _, obs := range obstacles {
		if obs.ID == fromID || obs.ID == toID {
			continue
		}
		if graph.IsAncestorPath(obs.ID, fromID) || graph.IsAncestorPath(obs.ID, toID) {
			continue
		}
		if graph.IsAncestorPath(fromID, obs.ID) || graph.IsAncestorPath(toID, obs.ID) {
			continue
		}
		if obs.Box.Right() <= xMin || obs.Box.X >= xMax {
			continue
		}
		if obs.Box.Bottom() <= yMin || obs.Box.Y >= yMax {
			continue
		}
		blocking = append(blocking, obs.Box)
	}
	return blocking
}

// orthogonalPath draws a single-bend right-angled connector with rounded
// corners. The bend direction follows the dominant displacement axis:
// horizontal-first (H-V-H) when |dx| >= |dy|, vertical-first otherwise.
func orthogonalPath(sx, sy, tx, ty, radius float64) string {
	dx, dy := tx-sx, ty-sy

	if math.Abs(dy) < 1 || math.Abs(dx) < 1 {
		return pathData(move(sx, sy), line(tx, ty))
	}

	if math.Abs(dx) >= math.Abs(dy) {
		midX := (sx + tx) / 2
		r := math.Max(0, minOf(radius, math.Abs(midX-sx), math.Abs(tx-midX), math.Abs(dy)/2))
		dv := sign(dy)
		dh := sign(dx)
		return pathData(
			move(sx, sy),
			line(midX-dh*r, sy),
			curve(midX, sy, midX, sy+dv*r),
			line(midX, ty-dv*r),
			curve(midX, ty, midX+dh*r, ty),
			line(tx, ty),
		)
	}

	midY := (sy + ty) / 2
	r := math.Max(0, minOf(radius, math.Abs(midY-sy), math.Abs(ty-midY), math.Abs(dx)/2))
	dh := sign(dx)
	dv := sign(dy)
	return pathData(
		move(sx, sy),
		line(sx, midY-dv*r),
		curve(sx, midY, sx+dh*r, midY),
		line(tx-dh*r, midY),
		curve(tx, midY, tx, midY+dv*r),
		line(tx, ty),
	)
}

// reroutedPath draws a detour around the blocking boxes: two vertical
// near-right-angle segments just outside their combined horizontal span,
// joined by a horizontal run at a clearance line above or below them,
// whichever is closer to the path's average vertical position.
func reroutedPath(sx, sy, tx, ty float64, blocking []layout.Box, cfg layout.Config) string {
	topY := blocking[0].Y
	botY := blocking[0].Bottom()
	leftEdge := blocking[0].X
	rightEdge := blocking[0].Right()
	for _, b := range blocking[1:] {
		topY = math.Min(topY, b.Y)
		botY = math.Max(botY, b.Bottom())
		leftEdge = math.Min(leftEdge, b.X)
		rightEdge = math.Max(rightEdge, b.Right())
	}
	topY -= cfg.RouteMargin
	botY += cfg.RouteMargin

	avgY := (sy + ty) / 2
	routeY := botY
	if math.Abs(topY-avgY) <= math.Abs(botY-avgY) {
		routeY = topY
	}

	cx1 := math.Max(sx+2, leftEdge-cfg.ObstacleGap)
	cx2 := math.Min(tx-cfg.MinRunIn, rightEdge+cfg.ObstacleGap)

	r := minOf(cfg.CornerRadius,
		math.Abs(sy-routeY)/2, math.Abs(ty-routeY)/2,
		math.Abs(cx1-sx)/2, math.Abs(tx-cx2)/2, math.Abs(cx2-cx1)/2)
	r = math.Max(r, 0)

	d1 := 1.0
	if routeY < sy {
		d1 = -1
	}
	d2 := 1.0
	if ty <= routeY {
		d2 = -1
	}

	return pathData(
		move(sx, sy),
		line(cx1-r, sy),
		curve(cx1, sy, cx1, sy+d1*r),
		line(cx1, routeY-d1*r),
		curve(cx1, routeY, cx1+r, routeY),
		line(cx2-r, routeY),
		curve(cx2, routeY, cx2, routeY+d2*r),
		line(cx2, ty-d2*r),
		curve(cx2, ty, cx2+r, ty),
		line(tx, ty),
	)
}

// =============================================================================
// Path Data Helpers
// =============================================================================

func move(x, y float64) string { return "M " + coord(x) + " " + coord(y) }

func line(x, y float64) string { return "L " + coord(x) + " " + coord(y) }

// curve emits a quadratic bezier turn through control point (cx, cy).
func curve(cx, cy, x, y float64) string {
	return "Q " + coord(cx) + " " + coord(cy) + ", " + coord(x) + " " + coord(y)
}

func pathData(segments ...string) string { return strings.Join(segments, " ") }

func coord(v float64) string {
	// Round to kill float noise so identical inputs serialize identically.
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sign(v float64) float64 {
	if v > 0 {
		return 1
	}
	return -1
}

func minOf(vals ...float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
