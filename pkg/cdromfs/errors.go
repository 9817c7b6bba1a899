package cdromfs

import (
	"errors"
	"io"
	"io/fs"

	"github.com/rstms/cdrom-kit/pkg/device"
	"github.com/rstms/cdrom-kit/pkg/directory"
)

var (
	// ErrIO is returned when the block device fails a read.
	ErrIO = device.ErrIO
	// ErrNoFilesystem is returned by Open when no primary volume descriptor is found.
	ErrNoFilesystem = errors.New("no iso9660 filesystem found")
	// ErrNotFound is returned by Lookup and Namei when a name does not exist.
	ErrNotFound = fs.ErrNotExist
	// ErrNotDirectory is returned when a directory operation is applied to a file.
	ErrNotDirectory = errors.New("not a directory")
	// ErrShortBuffer is returned when a caller supplied buffer cannot hold the result.
	ErrShortBuffer = io.ErrShortBuffer
	// ErrOutOfRange is returned for blocks or extents outside the entry or the volume.
	ErrOutOfRange = errors.New("out of range")
	// ErrMalformedRecord is returned when a directory holds a record that cannot be decoded.
	ErrMalformedRecord = directory.ErrMalformedRecord
	// ErrClosed is returned when a closed Dirent, or a Dirent of a closed Volume, is used.
	ErrClosed = fs.ErrClosed
)
