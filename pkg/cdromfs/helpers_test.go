package cdromfs

import (
	"bytes"
	"testing"

	"github.com/rstms/cdrom-kit/internal/isotest"
	"github.com/rstms/cdrom-kit/pkg/device"
	"github.com/rstms/cdrom-kit/pkg/option"
	"github.com/stretchr/testify/require"
)

const testUnit = 1

// pattern returns n bytes whose values depend on their offset, so misplaced sectors show up.
func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i/7) + seed
	}
	return b
}

func testTree() *isotest.Node {
	return isotest.Dir("",
		isotest.File("A", []byte("alpha")),
		isotest.Dir("usr",
			isotest.File("readme", pattern(5000, 3)),
			isotest.Dir("lib",
				isotest.File("libc.a", pattern(2*device.SectorSize, 9)),
			),
		),
		isotest.File("C.TXT", []byte("see")),
		isotest.File("empty", nil),
	)
}

type fixture struct {
	img  *isotest.Image
	dev  *device.ImageDevice
	vol  *Volume
	root *Dirent
}

func newFixture(t *testing.T, opts ...option.OpenOption) *fixture {
	t.Helper()
	img := isotest.MustBuild(t, testTree())
	dev := img.Device(testUnit)
	vol, err := Open(dev, testUnit, opts...)
	require.NoError(t, err)
	root, err := vol.Root()
	require.NoError(t, err)
	t.Cleanup(func() {
		root.Close()
		vol.Close()
	})
	return &fixture{img: img, dev: dev, vol: vol, root: root}
}

// switchDevice passes reads through until failing is set.
type switchDevice struct {
	inner   device.BlockDevice
	failing bool
	reads   int
}

func (d *switchDevice) ReadSectors(unit int, dst []byte, count int, start uint32) error {
	d.reads++
	if d.failing {
		return device.ErrIO
	}
	return d.inner.ReadSectors(unit, dst, count, start)
}

// truncatedDevice attaches only the first sectors of an image.
func truncatedDevice(t *testing.T, img *isotest.Image, sectors int) *device.ImageDevice {
	t.Helper()
	data := img.Data[:sectors*device.SectorSize]
	dev := device.NewImageDevice(nil)
	require.NoError(t, dev.Attach(testUnit, bytes.NewReader(data), int64(len(data))))
	return dev
}
