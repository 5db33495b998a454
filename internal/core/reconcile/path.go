package reconcile

import (
	"path/filepath"
	"strings"
)

// ChildPath resolves a '/'-separated platform path beneath a base
// directory, one segment at a time. It is pure: only the caller's
// create/write calls touch the filesystem.
func ChildPath(base, platformPath string) string {
	file := base
	for _, seg := range strings.Split(platformPath, "/") {
		if seg == "" {
			continue
		}
		file = filepath.Join(file, seg)
	}
	return file
}
