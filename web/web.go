// Package web embeds the built frontend so the binary ships self-contained.
package web

import "embed"

//go:embed dist
var DistFS embed.FS
