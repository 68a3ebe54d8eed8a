// Package pathmap translates between the local and remote path spaces.
//
// Local paths are resolved lexically, without touching the filesystem. Remote
// paths are expressed relative to the remote home directory ("~/...") whenever
// the local path lives under the local home directory.
package pathmap

import (
	"path"
	"path/filepath"
	"strings"
)

// RemoteHome is the remote-side spelling of the user's home directory.
const RemoteHome = "~"

// Resolved is a local path after resolution plus its object kind.
type Resolved struct {
	Path   string
	IsFile bool
}

// Resolve expands a leading "~" to home, makes the result absolute against cwd
// and lexically cleans it. A ".." at the root is dropped rather than rejected,
// so "/a/../../b" resolves to "/b".
func Resolve(raw, cwd, home string) string {
	p := raw
	if strings.HasPrefix(p, "~") {
		rest := strings.TrimLeft(strings.TrimLeft(p, "~"), "/")
		p = filepath.Join(home, rest)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(cwd, p)
	}
	return filepath.Clean(p)
}

// ToRemote maps a resolved local path onto the remote namespace. Paths under
// home become "~/<rel>" (or "~" for home itself); anything else is reused
// verbatim, which assumes both hosts share the same absolute layout.
func ToRemote(resolved, home string) string {
	home = filepath.Clean(home)
	if resolved == home {
		return RemoteHome
	}
	prefix := home
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if rel, ok := strings.CutPrefix(resolved, prefix); ok {
		return RemoteHome + "/" + filepath.ToSlash(rel)
	}
	return filepath.ToSlash(resolved)
}

// RemoteParent returns the directory that must exist on the remote side
// before remote can be written. "~" and "/" are their own parents.
func RemoteParent(remote string) string {
	if remote == RemoteHome || remote == "/" {
		return remote
	}
	parent := path.Dir(strings.TrimSuffix(remote, "/"))
	if parent == "." {
		return RemoteHome
	}
	return parent
}

// LocalParent is the local counterpart of RemoteParent used when pulling.
func LocalParent(local string) string {
	return filepath.Dir(local)
}
