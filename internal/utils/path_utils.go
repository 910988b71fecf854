package utils

import (
	"path"
	"strings"

	"github.com/funvibe/luaharvest/internal/config"
)

// ModuleFile maps a require path to its file below root. Dots separate
// directories, as in the script runtime's own resolver:
// ("scripts", "prefabs.pig") -> "scripts/prefabs/pig.lua".
func ModuleFile(root, modulePath string) string {
	p := strings.ReplaceAll(config.TrimSourceExt(modulePath), ".", "/")
	return path.Join(root, p+config.SourceFileExt)
}

// ModulePath is the inverse of ModuleFile: the require path of a file
// below root, or "" if the file is not a script under root.
func ModulePath(root, file string) string {
	if !config.HasSourceExt(file) {
		return ""
	}
	rel := file
	if root != "" && root != "." {
		prefix := strings.TrimSuffix(root, "/") + "/"
		if !strings.HasPrefix(file, prefix) {
			return ""
		}
		rel = file[len(prefix):]
	}
	return config.TrimSourceExt(rel)
}

// ExtractModuleName derives a module name from a path: its last element
// without the source extension ("prefabs/pig.lua" -> "pig").
func ExtractModuleName(p string) string {
	return config.TrimSourceExt(path.Base(p))
}
