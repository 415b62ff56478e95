// Package web holds the browser client served by the API binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed dist
var dist embed.FS

// FS returns the client files rooted at the directory holding index.html.
func FS() fs.FS {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		// dist is embedded at build time, so this only fails if the
		// directive above changes.
		panic(err)
	}
	return sub
}
