package site

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// contentFS returns the embedded site rooted at static/.
func contentFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return staticFS
	}
	return sub
}

// Snapshot returns the raw bytes of a bundled data snapshot, e.g.
// Snapshot("regulations") for data/regulations.json.
func Snapshot(name string) ([]byte, error) {
	return fs.ReadFile(contentFS(), "data/"+name+".json")
}
