package dispatcher

import (
	"os"
	"path/filepath"
)

type dirEntry struct {
	path  string
	isDir bool
	size  int64
}

// osReadDir lists dir's immediate children with their sizes, used to walk
// a container's staged extraction directory.
func osReadDir(dir string) ([]dirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]dirEntry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, dirEntry{path: filepath.Join(dir, e.Name()), isDir: e.IsDir(), size: info.Size()})
	}
	return out, nil
}

func filepathBase(path string) string {
	return filepath.Base(path)
}
