// Package extract copies the tree below a cdromfs directory onto the local filesystem.
package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rstms/cdrom-kit/pkg/cdromfs"
	"github.com/rstms/cdrom-kit/pkg/consts"
	"github.com/rstms/cdrom-kit/pkg/option"
	"github.com/rstms/cdrom-kit/pkg/sector"
)

// Item is one file or directory found by Walk. Path is slash separated and relative to the walk root.
type Item struct {
	Path string
	cdromfs.Entry
}

// Walk lists every entry below root in breadth-first order. "." and ".." are left out, as are
// names that cannot be used as a path element. A directory whose extent was already walked is
// listed but not entered again, so records pointing back at an ancestor cannot loop.
func Walk(root *cdromfs.Dirent) ([]Item, error) {
	type pending struct {
		path string
		dir  *cdromfs.Dirent
	}

	var (
		result  []Item
		queue   = []pending{{dir: root}}
		visited = map[uint32]bool{root.Sector(): true}
	)
	// handles opened here are closed on every return path
	defer func() {
		for _, p := range queue {
			if p.dir != root {
				p.dir.Close()
			}
		}
	}()

	for len(queue) > 0 {
		current := queue[0]
		err := walkDir(current.dir, current.path, &result, func(p string, e cdromfs.Entry) error {
			if visited[e.Sector] {
				return nil
			}
			child, err := current.dir.Lookup(e.Name)
			if err != nil {
				return err
			}
			visited[e.Sector] = true
			queue = append(queue, pending{path: p, dir: child})
			return nil
		})
		if current.dir != root {
			current.dir.Close()
		}
		queue = queue[1:]
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// walkDir appends the entries of dir to result and offers each subdirectory to enter.
func walkDir(dir *cdromfs.Dirent, dirPath string, result *[]Item, enter func(string, cdromfs.Entry) error) error {
	entries, err := dir.Entries()
	if err != nil {
		return fmt.Errorf("failed to list %q: %w", dirPath, err)
	}
	for _, e := range entries {
		if e.IsSpecial() || e.Name == "" || strings.Contains(e.Name, consts.PATH_SEPARATOR) {
			continue
		}
		item := Item{Path: path.Join(dirPath, e.Name), Entry: e}
		*result = append(*result, item)
		if !e.Dir {
			continue
		}
		if err := enter(item.Path, e); err != nil {
			return fmt.Errorf("failed to open directory %q: %w", item.Path, err)
		}
	}
	return nil
}

// Extract writes every file and directory below root into outputLocation, which is created if needed.
// Existing files are only replaced when the Overwrite option is set.
func Extract(root *cdromfs.Dirent, outputLocation string, opts ...option.ExtractOption) error {
	o := option.DefaultExtractOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.Logger

	logger.Debug("Extracting files", "outputLocation", outputLocation)
	items, err := Walk(root)
	if err != nil {
		return fmt.Errorf("failed to walk directory tree: %w", err)
	}

	var files []Item
	if err := os.MkdirAll(outputLocation, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", outputLocation, err)
	}
	for _, item := range items {
		if !item.Dir {
			files = append(files, item)
			continue
		}
		fullPath := filepath.Join(outputLocation, filepath.FromSlash(item.Path))
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
		}
	}

	for i, item := range files {
		fullPath := filepath.Join(outputLocation, filepath.FromSlash(item.Path))
		if err := extractFile(root, item, fullPath, i+1, len(files), o); err != nil {
			return fmt.Errorf("failed to extract file %s: %w", item.Path, err)
		}
	}

	// directory times last, writing files into them moves their mtime
	for _, item := range items {
		if item.Dir {
			setModTime(filepath.Join(outputLocation, filepath.FromSlash(item.Path)), item)
		}
	}
	logger.Info("Extracted files", "outputLocation", outputLocation, "files", len(files), "directories", len(items)-len(files))
	return nil
}

func extractFile(root *cdromfs.Dirent, item Item, fullPath string, fileNumber, fileCount int, o *option.ExtractOptions) (err error) {
	o.Logger.Trace("Extracting file", "path", item.Path, "sector", item.Sector, "length", item.Length)

	d, err := root.Namei(item.Path)
	if err != nil {
		return err
	}
	defer d.Close()

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !o.Overwrite {
		flags |= os.O_EXCL
	}
	outFile, err := os.OpenFile(fullPath, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("file %s exists and overwrite is off: %w", fullPath, err)
		}
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer func() {
		if cerr := outFile.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file %s: %w", fullPath, cerr)
		}
	}()

	size := int64(d.Length())
	buffer := make([]byte, sector.Size)
	bytesTransferred := int64(0)
	o.ExtractionProgressCallback(item.Path, 0, size, fileNumber, fileCount)
	for block := uint32(0); bytesTransferred < size; block++ {
		if err := d.ReadBlock(block, buffer); err != nil {
			return err
		}
		n := min(int64(sector.Size), size-bytesTransferred)
		if _, err := outFile.Write(buffer[:n]); err != nil {
			return fmt.Errorf("failed to write to file %s: %w", fullPath, err)
		}
		bytesTransferred += n
		o.ExtractionProgressCallback(item.Path, bytesTransferred, size, fileNumber, fileCount)
	}

	setModTime(fullPath, item)
	return nil
}

// setModTime applies the recording time, when there is one. Failures only lose the timestamp.
func setModTime(fullPath string, item Item) {
	if item.Recorded.IsZero() {
		return
	}
	_ = os.Chtimes(fullPath, item.Recorded, item.Recorded)
}
