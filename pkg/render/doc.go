// Package render converts snapshots and computed geometry into output
// artifacts.
//
// Supported formats:
//   - SVG: a standalone nested-box diagram ([RenderSVG])
//   - JSON: the document the viewer consumes ([RenderJSON])
//   - DOT: module-level dependencies in Graphviz DOT ([ToDOT]), optionally
//     rendered to SVG with Graphviz ([RenderDOTSVG])
package render
