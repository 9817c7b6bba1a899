package cdromfs

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

var (
	_ fs.FS          = (*FS)(nil)
	_ fs.ReadDirFS   = (*FS)(nil)
	_ fs.StatFS      = (*FS)(nil)
	_ fs.ReadDirFile = (*file)(nil)
	_ fs.FileInfo    = fileInfo{}
	_ fs.DirEntry    = fileInfo{}
)

// FS presents the tree below a directory handle as an fs.FS. The handle stays owned by the caller
// and must outlive the FS.
type FS struct {
	root *Dirent
}

// NewFS returns an FS rooted at root.
func NewFS(root *Dirent) *FS {
	return &FS{root: root}
}

// Open implements fs.FS.
func (f *FS) Open(name string) (fs.File, error) {
	d, err := f.resolve("open", name)
	if err != nil {
		return nil, err
	}
	return &file{d: d, info: infoFor(path.Base(name), d)}, nil
}

// Stat implements fs.StatFS.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	d, err := f.resolve("stat", name)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return infoFor(path.Base(name), d), nil
}

// ReadDir implements fs.ReadDirFS. Entries are sorted by name; "." and ".." are left out.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	d, err := f.resolve("readdir", name)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	list, err := dirEntries(d)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	slices.SortFunc(list, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return list, nil
}

// resolve returns a handle owned by the caller for name.
func (f *FS) resolve(op, name string) (*Dirent, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		if err := f.root.check(); err != nil {
			return nil, &fs.PathError{Op: op, Path: name, Err: err}
		}
		root := *f.root
		return &root, nil
	}
	d, err := Namei(f.root, name)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: unwrapKind(err)}
	}
	return d, nil
}

// unwrapKind maps driver errors onto the io/fs error values where one fits.
func unwrapKind(err error) error {
	switch {
	case errors.Is(err, ErrNotDirectory):
		return fs.ErrNotExist
	case errors.Is(err, ErrNotFound):
		return fs.ErrNotExist
	default:
		return err
	}
}

func dirEntries(d *Dirent) ([]fs.DirEntry, error) {
	entries, err := d.Entries()
	if err != nil {
		return nil, err
	}
	list := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsSpecial() {
			continue
		}
		list = append(list, fileInfo{name: e.Name, size: int64(e.Length), dir: e.Dir, modTime: e.Recorded})
	}
	return list, nil
}

// file is an open fs.File over a Dirent.
type file struct {
	d       *Dirent
	info    fileInfo
	offset  int64
	entries []fs.DirEntry
	listed  bool
}

func (f *file) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

func (f *file) Read(p []byte) (int, error) {
	if f.d.dir {
		return 0, &fs.PathError{Op: "read", Path: f.info.name, Err: ErrNotDirectory}
	}
	n, err := f.d.ReadAt(p, f.offset)
	f.offset += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, &fs.PathError{Op: "read", Path: f.info.name, Err: err}
	}
	return n, err
}

// ReadDir follows the fs.ReadDirFile contract: with n > 0 it returns at most n entries and io.EOF
// once the listing is used up.
func (f *file) ReadDir(n int) ([]fs.DirEntry, error) {
	if !f.d.dir {
		return nil, &fs.PathError{Op: "readdir", Path: f.info.name, Err: ErrNotDirectory}
	}
	if !f.listed {
		list, err := dirEntries(f.d)
		if err != nil {
			return nil, &fs.PathError{Op: "readdir", Path: f.info.name, Err: err}
		}
		f.entries, f.listed = list, true
	}

	if n <= 0 {
		list := f.entries
		f.entries = nil
		return list, nil
	}
	if len(f.entries) == 0 {
		return nil, io.EOF
	}
	n = min(n, len(f.entries))
	list := f.entries[:n]
	f.entries = f.entries[n:]
	return list, nil
}

func (f *file) Close() error {
	return f.d.Close()
}

// fileInfo implements fs.FileInfo and fs.DirEntry.
type fileInfo struct {
	name    string
	size    int64
	dir     bool
	modTime time.Time
}

func infoFor(name string, d *Dirent) fileInfo {
	return fileInfo{name: name, size: int64(d.length), dir: d.dir, modTime: d.ModTime()}
}

func (fi fileInfo) Name() string {
	return fi.name
}

func (fi fileInfo) Size() int64 {
	return fi.size
}

func (fi fileInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

func (fi fileInfo) ModTime() time.Time {
	return fi.modTime
}

func (fi fileInfo) IsDir() bool {
	return fi.dir
}

func (fi fileInfo) Sys() any {
	return nil
}

func (fi fileInfo) Type() fs.FileMode {
	return fi.Mode().Type()
}

func (fi fileInfo) Info() (fs.FileInfo, error) {
	return fi, nil
}
