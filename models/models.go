// Package models embeds the default language model shipped with langid.
package models

import (
	"embed"
	"io/fs"
)

//go:embed default/model.toml default/corpus/*.txt
var defaultFS embed.FS

// DefaultName is the path of the default model description inside Default().
const DefaultName = "model.toml"

// Default exposes the embedded default model rooted at its directory.
func Default() fs.FS {
	sub, err := fs.Sub(defaultFS, "default")
	if err != nil {
		panic(err)
	}
	return sub
}
