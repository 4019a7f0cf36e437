// Package web holds the embedded templates and static assets.
package web

import "embed"

// Templates is rooted at templates/ once passed through fs.Sub.
//
//go:embed templates
var Templates embed.FS

//go:embed static
var Static embed.FS
