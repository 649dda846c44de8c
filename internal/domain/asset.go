package domain

import (
	"path/filepath"
	"time"
)

// FileRef locates one JSON Lines file under a data root. Dir is relative to
// Root and names the asset the file belongs to.
type FileRef struct {
	Root    string    `json:"root"`
	Dir     string    `json:"dir"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Path joins the three parts into a readable path.
func (f FileRef) Path() string {
	return filepath.Join(f.Root, f.Dir, f.Name)
}

// Asset is a named group of files sharing a directory.
type Asset struct {
	Name  string    `json:"name"`
	Files []FileRef `json:"files"`
}

// Size is the combined size of the asset's files.
func (a Asset) Size() int64 {
	var n int64
	for _, f := range a.Files {
		n += f.Size
	}
	return n
}

// ModTime is the latest modification time across the asset's files.
func (a Asset) ModTime() time.Time {
	var t time.Time
	for _, f := range a.Files {
		if f.ModTime.After(t) {
			t = f.ModTime
		}
	}
	return t
}
