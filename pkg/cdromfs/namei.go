package cdromfs

import (
	"fmt"
	"strings"

	"github.com/rstms/cdrom-kit/pkg/consts"
)

// Namei resolves a slash separated path relative to start. Empty segments are ignored, so leading,
// trailing and repeated slashes do not matter. Each segment is looked up in turn and the handles
// created along the way are closed; start itself is never closed. A path without segments returns
// start. Otherwise the result is a new handle owned by the caller.
func Namei(start *Dirent, path string) (*Dirent, error) {
	if err := start.check(); err != nil {
		return nil, err
	}

	cur := start
	for _, part := range strings.Split(path, consts.PATH_SEPARATOR) {
		if part == "" {
			continue
		}
		next, err := cur.Lookup(part)
		if cur != start {
			cur.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", path, err)
		}
		cur = next
	}
	return cur, nil
}

// Namei resolves path relative to d. See Namei.
func (d *Dirent) Namei(path string) (*Dirent, error) {
	return Namei(d, path)
}
