package modules

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/funvibe/luaharvest/internal/config"
	"github.com/funvibe/luaharvest/internal/pipeline"
	"github.com/funvibe/luaharvest/internal/utils"
)

// ErrModuleNotFound is returned when a require path has no script file.
var ErrModuleNotFound = errors.New("module not found")

// Source gives read access to the game's script tree.
type Source interface {
	// ReadModule returns the text of the script for a require path such
	// as "prefabs/pig".
	ReadModule(modulePath string) ([]byte, error)
	// List returns the require paths of the scripts directly inside dir,
	// sorted.
	List(dir string) ([]string, error)
}

// FSSource serves scripts from any fs.FS: an unpacked directory, the
// game's zip bundle, or an in-memory tree in tests.
type FSSource struct {
	fsys   fs.FS
	root   string
	closer io.Closer
}

// NewFSSource serves scripts stored below root inside fsys.
func NewFSSource(fsys fs.FS, root string) *FSSource {
	if root == "" {
		root = "."
	}
	return &FSSource{fsys: fsys, root: root}
}

// Open picks a source for path: a .zip archive (the game ships
// data/databundles/scripts.zip) or a directory. In both cases a top-level
// "scripts" directory is used as the root when present.
func Open(p string) (*FSSource, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("opening scripts: %w", err)
	}
	if !info.IsDir() && strings.EqualFold(filepath.Ext(p), ".zip") {
		return OpenZip(p)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening scripts: %s is neither a directory nor a zip archive", p)
	}
	return newRootedSource(os.DirFS(p), nil), nil
}

// OpenZip serves scripts from a zip archive. Close releases the file.
func OpenZip(p string) (*FSSource, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("opening scripts archive %s: %w", p, err)
	}
	return newRootedSource(zr, zr), nil
}

func newRootedSource(fsys fs.FS, closer io.Closer) *FSSource {
	root := "."
	if info, err := fs.Stat(fsys, config.ScriptsRoot); err == nil && info.IsDir() {
		root = config.ScriptsRoot
	}
	return &FSSource{fsys: fsys, root: root, closer: closer}
}

func (s *FSSource) ReadModule(modulePath string) ([]byte, error) {
	name := utils.ModuleFile(s.root, modulePath)
	data, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, modulePath)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func (s *FSSource) List(dir string) ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, path.Join(s.root, dir))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var out []string
	for _, ent := range entries {
		if ent.IsDir() || !config.HasSourceExt(ent.Name()) {
			continue
		}
		out = append(out, path.Join(dir, config.TrimSourceExt(ent.Name())))
	}
	sort.Strings(out)
	return out, nil
}

// Close releases the underlying archive, if any.
func (s *FSSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ReadProcessor is the pipeline stage that fetches a file's text.
type ReadProcessor struct {
	Source Source
}

func (rp *ReadProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Source != nil || ctx.Failed() {
		return ctx
	}
	data, err := rp.Source.ReadModule(ctx.ModulePath)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Source = data
	return ctx
}
