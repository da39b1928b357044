// Package web embeds the static intake frontend served by the local server.
package web

import "embed"

// Assets holds the embedded frontend files.
//
//go:embed static
var Assets embed.FS
