package server

import _ "embed"

// viewerHTML is the single-page client served at /.
//
//go:embed assets/viewer.html
var viewerHTML []byte
