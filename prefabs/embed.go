package prefabs

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

//go:embed scripts/*.tengo scripts/*.lua
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

var diskRoot atomic.Pointer[string]

func init() {
	root := "prefabs"
	diskRoot.Store(&root)
}

// SetDir changes the directory checked for on-disk overrides of the embedded
// prefabs. It is normally called once at startup.
func SetDir(dir string) {
	diskRoot.Store(&dir)
}

// Dir returns the on-disk override directory.
func Dir() string {
	return *diskRoot.Load()
}

// Load returns a prefab, preferring the on-disk copy over the embedded one.
func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

// LoadScript returns a script, preferring the on-disk copy.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		return after
	}
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}

	s := filepath.ToSlash(path)

	if after, ok := strings.CutPrefix(s, "prefabs/scripts/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return fmt.Sprintf("scripts/%s", s)
}

func diskPath(clean string) string {
	return filepath.Join(Dir(), filepath.FromSlash(clean))
}
