// Package cdrom opens ISO-9660 image files through the cdromfs driver.
package cdrom

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/rstms/cdrom-kit/pkg/cdromfs"
	"github.com/rstms/cdrom-kit/pkg/device"
	"github.com/rstms/cdrom-kit/pkg/extract"
	"github.com/rstms/cdrom-kit/pkg/option"
)

// Unit is the device unit an image file is attached as.
const Unit = 0

// Open attaches the image file at location and mounts the ISO-9660 volume on it.
func Open(location string, opts ...option.OpenOption) (*Image, error) {
	o := option.DefaultOpenOptions()
	for _, opt := range opts {
		opt(o)
	}

	dev := device.NewImageDevice(o.Logger)
	if err := dev.AttachFile(Unit, location); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	vol, err := cdromfs.Open(dev, Unit, opts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to mount %s: %w", location, err), dev.Close())
	}
	root, err := vol.Root()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to open root directory of %s: %w", location, err), vol.Close(), dev.Close())
	}

	return &Image{
		location: location,
		dev:      dev,
		volume:   vol,
		root:     root,
	}, nil
}

// Image is a mounted image file. Its root handle lives until Close.
type Image struct {
	location string
	dev      *device.ImageDevice
	volume   *cdromfs.Volume
	root     *cdromfs.Dirent
}

func (i *Image) Volume() *cdromfs.Volume {
	return i.volume
}

// Root returns the image's root handle. It is owned by the Image and must not be closed.
func (i *Image) Root() *cdromfs.Dirent {
	return i.root
}

// Namei resolves path from the root. The result belongs to the caller unless it is the root itself.
func (i *Image) Namei(path string) (*cdromfs.Dirent, error) {
	return i.root.Namei(path)
}

// FS returns an io/fs view of the image.
func (i *Image) FS() fs.FS {
	return cdromfs.NewFS(i.root)
}

// Extract copies the whole image into outputLocation.
func (i *Image) Extract(outputLocation string, opts ...option.ExtractOption) error {
	return extract.Extract(i.root, outputLocation, opts...)
}

// Close unmounts the volume and closes the image file.
func (i *Image) Close() error {
	i.root.Close()
	return errors.Join(i.volume.Close(), i.dev.Close())
}

func (i *Image) String() string {
	return fmt.Sprintf("%s: %s", i.location, i.volume)
}
