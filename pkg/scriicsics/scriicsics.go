// Package scriicsics embeds the script library that ships with scriic. Its
// scripts are addressed as scriicsics:<path>, e.g. scriicsics:kitchen/make_tea.scriic.
package scriicsics

import (
	"embed"
	"io/fs"
	"path"
	"sort"

	"github.com/AlphaMycelium/scriic/pkg/driver"
)

//go:embed */*.scriic
var files embed.FS

// FS exposes the bundled scripts.
func FS() fs.FS {
	return files
}

// Mount registers the bundled library on r under driver.BundledModule.
func Mount(r *driver.FileResolver) error {
	return r.Mount(driver.BundledModule, FS(), "bundled scriicsics")
}

// Scripts lists the bundled script paths in sorted order.
func Scripts() ([]string, error) {
	var out []string
	err := fs.WalkDir(files, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && path.Ext(p) == ".scriic" {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
