// Package web embeds the chat landing page.
package web

import "embed"

// Dist holds the static site served at /.
//
//go:embed dist
var Dist embed.FS
