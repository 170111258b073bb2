// Package web embeds the public page templates.
package web

import "embed"

// Templates holds template/*.html.
//
//go:embed template/*.html
var Templates embed.FS
