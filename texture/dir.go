package texture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
)

// Dir is a [Store] backed by image files under a directory. Identifiers are
// slash separated paths relative to the directory.
type Dir struct {
	root string
	fsys fs.FS
}

// NewDir returns a texture store rooted at the directory root.
func NewDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	} else if !info.IsDir() {
		return nil, fmt.Errorf("texture root %q is not a directory", root)
	}
	return &Dir{root: root, fsys: os.DirFS(root)}, nil
}

// Get implements [Source]. Files that are not recognized as images are rejected.
func (d *Dir) Get(ctx context.Context, id string) (Texture, error) {
	if !fs.ValidPath(id) {
		return Texture{}, fmt.Errorf("invalid texture path %q: %w", id, ErrNotFound)
	}
	data, err := fs.ReadFile(d.fsys, id)
	if errors.Is(err, fs.ErrNotExist) {
		return Texture{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	} else if err != nil {
		return Texture{}, err
	}
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return Texture{}, fmt.Errorf("texture %q is not an image (detected %q)", id, kind.MIME.Value)
	}
	tex := Texture{ID: id, Data: data}
	// Dimensions are informative; formats without a registered decoder still resolve.
	tex.Width, tex.Height, _ = DecodeConfig(data)
	return tex, nil
}

// Put implements [Sink] by writing data to the file named by id.
func (d *Dir) Put(ctx context.Context, id string, data []byte, width, height int) (string, error) {
	if !fs.ValidPath(id) || id == "." {
		return "", fmt.Errorf("invalid texture path %q", id)
	}
	name := filepath.Join(d.root, filepath.FromSlash(id))
	err := os.MkdirAll(filepath.Dir(name), 0o755)
	if err != nil {
		return "", err
	}
	err = os.WriteFile(name, data, 0o644)
	if err != nil {
		return "", err
	}
	return id, nil
}
