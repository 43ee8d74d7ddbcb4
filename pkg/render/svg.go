package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/speckview/pkg/graph"
	"github.com/matzehuels/speckview/pkg/layout"
	"github.com/matzehuels/speckview/pkg/route"
	"github.com/matzehuels/speckview/pkg/visibility"
)

// Catppuccin Mocha palette, matched to the viewer stylesheet so exported
// diagrams look the same as the live view.
const diagramCSS = `
    .module-box { stroke: #45475a; stroke-width: 1.5; }
    .depth-0 { fill: #1e1e2e; }
    .depth-1 { fill: #181825; }
    .depth-2 { fill: #11111b; }
    .depth-3 { fill: #1e1e2e; }
    .module-label { fill: #a6adc8; font-family: 'JetBrains Mono', 'Fira Code', monospace; font-size: 13px; font-weight: 600; }
    .fn-box rect { fill: #313244; stroke: #585b70; stroke-width: 1; }
    .fn-box text { fill: #cdd6f4; font-family: 'JetBrains Mono', 'Fira Code', monospace; font-size: 12px; }
    .mod-arrow { fill: none; stroke: #a6e3a1; stroke-width: 2; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background bool
	hideArrows bool
}

// WithBackground paints an opaque background rectangle behind the diagram,
// for exports viewed outside the dark-themed page.
func WithBackground() SVGOption { return func(r *svgRenderer) { r.background = true } }

// WithoutArrows omits the dependency arrows, leaving only the box tree.
func WithoutArrows() SVGOption { return func(r *svgRenderer) { r.hideArrows = true } }

// RenderSVG renders the currently visible portion of a snapshot as a
// standalone SVG document. Collapsed modules are drawn as plain boxes with
// their contents omitted; arrows connect the visible endpoints each edge
// resolves to.
func RenderSVG(snap *graph.Snapshot, geo *layout.Geometry, set visibility.ExpandedSet, cfg layout.Config, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		geo.Width, geo.Height, geo.Width, geo.Height)

	renderDefs(&buf)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", diagramCSS)

	if r.background {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="#1e1e2e"/>`+"\n", geo.Width, geo.Height)
	}

	buf.WriteString(`  <g id="boxes">` + "\n")
	if root, ok := snap.Modules[snap.Root]; ok {
		renderModule(&buf, snap, geo, set, root)
	}
	buf.WriteString("  </g>\n")

	if !r.hideArrows {
		buf.WriteString(`  <g id="arrows">` + "\n")
		for _, a := range route.Plan(snap, geo, set, cfg) {
			fmt.Fprintf(&buf, `    <path class="mod-arrow" d="%s" marker-end="url(#arrow-mod)"/>`+"\n", a.Path)
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <marker id="arrow-mod" viewBox="0 0 10 7" refX="0" refY="3.5" markerWidth="12" markerHeight="8" markerUnits="userSpaceOnUse" orient="auto-start-reverse">` + "\n")
	buf.WriteString(`      <polygon points="0 0, 10 3.5, 0 7" fill="#a6e3a1"/>` + "\n")
	buf.WriteString("    </marker>\n  </defs>\n")
}

// renderModule draws one module box and, if its contents are visible,
// its function rows and children.
func renderModule(buf *bytes.Buffer, snap *graph.Snapshot, geo *layout.Geometry, set visibility.ExpandedSet, mod graph.Module) {
	box, ok := geo.Modules[mod.Path]
	if !ok {
		return
	}

	depthClass := fmt.Sprintf("depth-%d", mod.Depth%4)
	fmt.Fprintf(buf, `    <rect class="module-box %s" data-path="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6"/>`+"\n",
		depthClass, escape(mod.Path), box.X, box.Y, box.W, box.H)
	fmt.Fprintf(buf, `    <text class="module-label" x="%.1f" y="%.1f">%s</text>`+"\n",
		box.X+10, box.Y+18, escape(mod.Name))

	if !visibility.ContentsVisible(set, mod.Path) {
		return
	}

	for _, fn := range mod.Functions {
		fb, ok := geo.Functions[mod.FunctionID(fn)]
		if !ok {
			continue
		}
		buf.WriteString(`    <g class="fn-box">` + "\n")
		fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4"/>`+"\n",
			fb.X, fb.Y, fb.W, fb.H)
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			fb.CenterX(), fb.CenterY(), escape(fn))
		buf.WriteString("    </g>\n")
	}

	for _, childPath := range mod.Children {
		child, ok := snap.Modules[childPath]
		if !ok {
			continue
		}
		renderModule(buf, snap, geo, set, child)
	}
}

var svgEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string {
	return svgEscaper.Replace(s)
}
