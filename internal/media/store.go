package media

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Store serves prefetched fallback media by sanitized filename. The disk
// implementation streams the file; the S3 implementation redirects to a
// presigned URL. Either way the player just follows /media/<filename>.
type Store interface {
	Serve(w http.ResponseWriter, r *http.Request, filename string)
}

// DiskStore serves fallback media straight from the media directory, the
// layout the prefetch command writes.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Serve(w http.ResponseWriter, r *http.Request, filename string) {
	// Sanitized filenames never contain separators; reject anything that
	// arrives with one rather than resolving it.
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, path)
}
