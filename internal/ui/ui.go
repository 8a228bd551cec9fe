// Package ui embeds the static map frontend.
package ui

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// StaticFS is the embedded frontend rooted at its index.html.
var StaticFS = func() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}()
