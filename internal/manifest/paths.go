package manifest

import (
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/meigma/caff"
)

// Payload directories inside an extracted archive.
const (
	NamedDir   = "files"
	UnnamedDir = "raw"
)

// PayloadPaths assigns a relative, slash-separated path to every entry.
//
// An entry whose file name is a single safe path element, not yet taken
// (compared case-insensitively), is stored as files/<file_name>. Every other
// entry is stored as raw/<index>.bin.
func PayloadPaths(entries []caff.Metadata) []string {
	paths := make([]string, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i := range entries {
		name := entries[i].FileName
		folded := strings.ToLower(name)
		if _, dup := seen[folded]; !dup && safeName(name) {
			seen[folded] = struct{}{}
			paths[i] = path.Join(NamedDir, name)
			continue
		}
		paths[i] = path.Join(UnnamedDir, strconv.Itoa(i)+".bin")
	}
	return paths
}

func safeName(name string) bool {
	if !fs.ValidPath(name) || name == "." || strings.ContainsAny(name, "/\\:") {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7F {
			return false
		}
	}
	return true
}
