// Package isotest builds small ISO-9660 images in memory for tests.
package isotest

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rstms/cdrom-kit/pkg/consts"
	"github.com/rstms/cdrom-kit/pkg/descriptor"
	"github.com/rstms/cdrom-kit/pkg/device"
	"github.com/rstms/cdrom-kit/pkg/directory"
	"github.com/rstms/cdrom-kit/pkg/encoding"
	"github.com/rstms/cdrom-kit/pkg/sector"
)

// Recorded is the recording time stamped on every record.
var Recorded = time.Date(2016, time.September, 1, 12, 30, 0, 0, time.UTC)

// Node is a file or directory to be placed in an image. Extent and Length are filled in by Build.
type Node struct {
	Name     string
	Data     []byte
	Children []*Node
	// Identifier overrides the identifier written to disk. By default files get ";1" appended,
	// and a '.' before it when the name has no extension.
	Identifier string

	Extent uint32
	Length uint32

	dir bool
}

// Dir returns a directory node.
func Dir(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children, dir: true}
}

// File returns a file node.
func File(name string, data []byte) *Node {
	return &Node{Name: name, Data: data}
}

func (n *Node) IsDir() bool {
	return n.dir
}

// Find returns the node at the slash separated path below n, or nil.
func (n *Node) Find(path string) *Node {
	cur := n
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		var next *Node
		for _, c := range cur.Children {
			if c.Name == part {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

func (n *Node) identifier() []byte {
	switch {
	case n.Identifier != "":
		return []byte(n.Identifier)
	case n.dir:
		return []byte(n.Name)
	case strings.Contains(n.Name, "."):
		return []byte(n.Name + ";1")
	default:
		return []byte(n.Name + ".;1")
	}
}

// Options shape the descriptor area of a built image.
type Options struct {
	JunkSectors     int
	Before          []descriptor.VolumeDescriptorType
	OmitTerminator  bool
	PaddingSectors  int
	VolumeID        string
	VolumeSpaceSize uint32
}

type BuildOption func(*Options)

// WithJunkSectors places n sectors without the CD001 magic ahead of the descriptors.
func WithJunkSectors(n int) BuildOption {
	return func(o *Options) { o.JunkSectors = n }
}

// WithDescriptorsBefore places header-only descriptors of the given types ahead of the primary one.
func WithDescriptorsBefore(types ...descriptor.VolumeDescriptorType) BuildOption {
	return func(o *Options) { o.Before = append(o.Before, types...) }
}

func WithoutTerminator() BuildOption {
	return func(o *Options) { o.OmitTerminator = true }
}

// WithPaddingSectors appends n zero sectors to the image.
func WithPaddingSectors(n int) BuildOption {
	return func(o *Options) { o.PaddingSectors = n }
}

func WithVolumeID(id string) BuildOption {
	return func(o *Options) { o.VolumeID = id }
}

// WithVolumeSpaceSize overrides the sector count recorded in the primary descriptor.
func WithVolumeSpaceSize(n uint32) BuildOption {
	return func(o *Options) { o.VolumeSpaceSize = n }
}

// Image is a built image.
type Image struct {
	Data          []byte
	Root          *Node
	PrimarySector uint32
	TotalSectors  uint32
}

// Device returns an ImageDevice with the image attached as unit.
func (img *Image) Device(unit int) *device.ImageDevice {
	dev := device.NewImageDevice(nil)
	if err := dev.Attach(unit, bytes.NewReader(img.Data), int64(len(img.Data))); err != nil {
		panic(err)
	}
	return dev
}

// PatchRecord passes the raw bytes of the record called name in the directory at dirPath to patch,
// which may rewrite them in place. Devices created afterwards see the change.
func (img *Image) PatchRecord(dirPath, name string, patch func(rec []byte)) error {
	dir := img.Root.Find(dirPath)
	if dir == nil || !dir.dir {
		return fmt.Errorf("no directory %q in image", dirPath)
	}
	start := int(dir.Extent) * consts.ISO9660_SECTOR_SIZE
	content := img.Data[start : start+int(dir.Length)]
	dec := directory.NewDecoder(content, dir.Length)
	for dec.Next() {
		rec := dec.Record()
		if rec.Matches(name) {
			off := dec.Offset()
			patch(content[off : off+int(rec.Length)])
			return nil
		}
	}
	return fmt.Errorf("no record %q in directory %q", name, dirPath)
}

// MustBuild is Build for tests.
func MustBuild(t testing.TB, root *Node, opts ...BuildOption) *Image {
	t.Helper()
	img, err := Build(root, opts...)
	if err != nil {
		t.Fatalf("failed to build image: %v", err)
	}
	return img
}

// Build lays out root and its descendants after the descriptor area: directories first in
// breadth-first order, then file data. Records never straddle a sector.
func Build(root *Node, opts ...BuildOption) (*Image, error) {
	o := &Options{VolumeID: "CDROM"}
	for _, opt := range opts {
		opt(o)
	}
	if !root.dir {
		return nil, fmt.Errorf("root %q is not a directory", root.Name)
	}

	descriptors := o.JunkSectors + len(o.Before) + 1
	if !o.OmitTerminator {
		descriptors++
	}
	primary := uint32(consts.ISO9660_SYSTEM_AREA_SECTORS + o.JunkSectors + len(o.Before))
	next := uint32(consts.ISO9660_SYSTEM_AREA_SECTORS + descriptors)

	// allocate extents
	var dirs, files []*Node
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		dirs = append(dirs, n)
		for _, c := range n.Children {
			if c.dir {
				queue = append(queue, c)
			} else {
				files = append(files, c)
			}
		}
	}
	for _, d := range dirs {
		size, err := directorySize(d)
		if err != nil {
			return nil, err
		}
		d.Extent, d.Length = next, size
		next += sector.Count(size)
	}
	for _, f := range files {
		f.Extent, f.Length = next, uint32(len(f.Data))
		next += sector.Count(f.Length)
	}
	total := next + uint32(o.PaddingSectors)

	data := make([]byte, int(total)*consts.ISO9660_SECTOR_SIZE)
	at := func(lba uint32) []byte {
		return data[int(lba)*consts.ISO9660_SECTOR_SIZE:]
	}

	// descriptor area
	lba := uint32(consts.ISO9660_SYSTEM_AREA_SECTORS)
	for i := 0; i < o.JunkSectors; i++ {
		copy(at(lba), []byte("\x01JUNK!"))
		lba++
	}
	for _, t := range o.Before {
		h := descriptor.NewHeader(t)
		copy(at(lba), h.Marshal())
		lba++
	}
	spaceSize := total
	if o.VolumeSpaceSize != 0 {
		spaceSize = o.VolumeSpaceSize
	}
	pvd := &descriptor.PrimaryVolumeDescriptor{
		VolumeDescriptorHeader: descriptor.NewHeader(descriptor.VolumeDescriptorPrimary),
		SystemIdentifier:       "ISOTEST",
		VolumeIdentifier:       o.VolumeID,
		VolumeSpaceSize:        spaceSize,
		LogicalBlockSize:       consts.ISO9660_SECTOR_SIZE,
		RootDirectoryRecord:    *recordFor(root, []byte{consts.ISO9660_IDENT_SELF}),
	}
	pvdBytes, err := pvd.Marshal()
	if err != nil {
		return nil, err
	}
	copy(at(lba), pvdBytes)
	lba++
	if !o.OmitTerminator {
		h := descriptor.NewHeader(descriptor.VolumeDescriptorSetTerminator)
		copy(at(lba), h.Marshal())
	}

	// directory contents
	parents := map[*Node]*Node{root: root}
	for _, d := range dirs {
		for _, c := range d.Children {
			parents[c] = d
		}
	}
	for _, d := range dirs {
		content, err := directoryContent(d, parents[d])
		if err != nil {
			return nil, err
		}
		copy(at(d.Extent), content)
	}
	for _, f := range files {
		copy(at(f.Extent), f.Data)
	}

	return &Image{
		Data:          data,
		Root:          root,
		PrimarySector: primary,
		TotalSectors:  total,
	}, nil
}

func recordFor(n *Node, ident []byte) *directory.Record {
	recorded, _ := encoding.MarshalRecordingDateTime(Recorded)
	return &directory.Record{
		Extent:               n.Extent,
		DataLength:           n.Length,
		Recorded:             recorded,
		Flags:                directory.FileFlags{Directory: n.dir},
		VolumeSequenceNumber: 1,
		Identifier:           ident,
	}
}

func directoryRecords(d, parent *Node) []*directory.Record {
	records := []*directory.Record{
		recordFor(d, []byte{consts.ISO9660_IDENT_SELF}),
		recordFor(parent, []byte{consts.ISO9660_IDENT_PARENT}),
	}
	for _, c := range d.Children {
		records = append(records, recordFor(c, c.identifier()))
	}
	return records
}

// directorySize returns the directory length rounded to whole sectors, as mastering tools record it.
func directorySize(d *Node) (uint32, error) {
	used := 0
	for _, r := range directoryRecords(d, d) {
		size := r.Size()
		if size > 255 {
			return 0, fmt.Errorf("identifier %q is too long", r.Identifier)
		}
		if rest := consts.ISO9660_SECTOR_SIZE - used%consts.ISO9660_SECTOR_SIZE; size > rest {
			used += rest
		}
		used += size
	}
	return sector.Count(uint32(used)) * consts.ISO9660_SECTOR_SIZE, nil
}

func directoryContent(d, parent *Node) ([]byte, error) {
	var content []byte
	for _, r := range directoryRecords(d, parent) {
		b, err := r.Marshal()
		if err != nil {
			return nil, err
		}
		if rest := consts.ISO9660_SECTOR_SIZE - len(content)%consts.ISO9660_SECTOR_SIZE; len(b) > rest {
			content = append(content, make([]byte, rest)...)
		}
		content = append(content, b...)
	}
	return content, nil
}
