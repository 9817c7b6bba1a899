package cdromfs

import (
	"bytes"
	"io"
	"io/fs"
	"testing"

	"github.com/rstms/cdrom-kit/internal/isotest"
	"github.com/rstms/cdrom-kit/pkg/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirent_Lookup(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		node string
		dir  bool
	}{
		{"A", "A", false},
		{"usr", "usr", true},
		{"C.TXT", "C.TXT", false},
		{"empty", "empty", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.root.Lookup(tt.name)
			require.NoError(t, err)
			defer d.Close()

			node := f.img.Root.Find(tt.node)
			assert.Equal(t, node.Extent, d.Sector())
			assert.Equal(t, node.Length, d.Length())
			assert.Equal(t, tt.dir, d.IsDir())
			assert.True(t, isotest.Recorded.Equal(d.ModTime()))
		})
	}
}

func TestDirent_LookupNotFound(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"B", "", ".", "..", "a", "A.;1", "A.", "usr/readme", "READ"} {
		t.Run(name, func(t *testing.T) {
			d, err := f.root.Lookup(name)
			require.ErrorIs(t, err, ErrNotFound)
			require.ErrorIs(t, err, fs.ErrNotExist)
			assert.Nil(t, d)
		})
	}
}

func TestDirent_LookupOnFile(t *testing.T) {
	f := newFixture(t)
	a, err := f.root.Lookup("A")
	require.NoError(t, err)

	_, err = a.Lookup("x")
	require.ErrorIs(t, err, ErrNotDirectory)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestDirent_LookupIOFailure(t *testing.T) {
	img := isotest.MustBuild(t, testTree())
	dev := &switchDevice{inner: img.Device(testUnit)}
	vol, err := Open(dev, testUnit)
	require.NoError(t, err)
	root, err := vol.Root()
	require.NoError(t, err)

	dev.failing = true
	_, err = root.Lookup("A")
	require.ErrorIs(t, err, ErrIO)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestDirent_LookupRereadsDevice(t *testing.T) {
	img := isotest.MustBuild(t, testTree())
	dev := &switchDevice{inner: img.Device(testUnit)}
	vol, err := Open(dev, testUnit)
	require.NoError(t, err)
	root, err := vol.Root()
	require.NoError(t, err)

	before := dev.reads
	for range 3 {
		d, err := root.Lookup("usr")
		require.NoError(t, err)
		d.Close()
	}
	assert.Equal(t, before+3, dev.reads)
}

func TestDirent_ReadDir(t *testing.T) {
	f := newFixture(t)
	want := ".\x00..\x00A\x00usr\x00C.TXT\x00empty\x00"

	t.Run("names in disk order", func(t *testing.T) {
		buf := make([]byte, 256)
		n, err := f.root.ReadDir(buf)
		require.NoError(t, err)
		assert.Equal(t, want, string(buf[:n]))
	})

	t.Run("exact fit", func(t *testing.T) {
		buf := make([]byte, len(want))
		n, err := f.root.ReadDir(buf)
		require.NoError(t, err)
		assert.Equal(t, len(want), n)
		assert.Equal(t, want, string(buf))
	})

	t.Run("short buffer", func(t *testing.T) {
		buf := bytes.Repeat([]byte{0xff}, len(want)-1)
		n, err := f.root.ReadDir(buf)
		require.ErrorIs(t, err, ErrShortBuffer)
		assert.Zero(t, n)
		assert.Equal(t, bytes.Repeat([]byte{0xff}, len(want)-1), buf, "buffer written on failure")
	})

	t.Run("subdirectory", func(t *testing.T) {
		usr, err := f.root.Lookup("usr")
		require.NoError(t, err)
		defer usr.Close()

		buf := make([]byte, 64)
		n, err := usr.ReadDir(buf)
		require.NoError(t, err)
		assert.Equal(t, ".\x00..\x00readme\x00lib\x00", string(buf[:n]))
	})

	t.Run("file", func(t *testing.T) {
		a, err := f.root.Lookup("A")
		require.NoError(t, err)
		defer a.Close()

		_, err = a.ReadDir(make([]byte, 64))
		require.ErrorIs(t, err, ErrNotDirectory)
	})
}

func TestDirent_Entries(t *testing.T) {
	f := newFixture(t)
	entries, err := f.root.Entries()
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{".", "..", "A", "usr", "C.TXT", "empty"}, names)

	assert.True(t, entries[0].IsSpecial())
	assert.True(t, entries[1].IsSpecial())
	assert.Equal(t, f.img.Root.Extent, entries[0].Sector)
	assert.Equal(t, f.img.Root.Extent, entries[1].Sector)

	usr := entries[3]
	assert.False(t, usr.IsSpecial())
	assert.True(t, usr.Dir)
	assert.Equal(t, f.img.Root.Find("usr").Extent, usr.Sector)
	assert.True(t, isotest.Recorded.Equal(usr.Recorded))
}

func TestDirent_ReadBlock(t *testing.T) {
	f := newFixture(t)
	readme, err := f.root.Namei("usr/readme")
	require.NoError(t, err)
	defer readme.Close()

	data := f.img.Root.Find("usr/readme").Data
	buf := make([]byte, device.SectorSize)
	for block := uint32(0); block < 3; block++ {
		require.NoError(t, readme.ReadBlock(block, buf))
		start := int(block) * device.SectorSize
		end := min(start+device.SectorSize, len(data))
		assert.Equal(t, data[start:end], buf[:end-start], "block %d", block)
	}

	err = readme.ReadBlock(3, buf)
	require.ErrorIs(t, err, ErrOutOfRange)

	err = readme.ReadBlock(0, buf[:device.SectorSize-1])
	require.ErrorIs(t, err, ErrShortBuffer)

	t.Run("directory", func(t *testing.T) {
		require.NoError(t, f.root.ReadBlock(0, buf))
		assert.Equal(t, byte(34), buf[0])
		assert.Equal(t, byte(0), buf[33])
	})

	t.Run("empty file", func(t *testing.T) {
		empty, err := f.root.Lookup("empty")
		require.NoError(t, err)
		require.ErrorIs(t, empty.ReadBlock(0, buf), ErrOutOfRange)
	})
}

func TestDirent_Load(t *testing.T) {
	f := newFixture(t)
	readme, err := f.root.Namei("usr/readme")
	require.NoError(t, err)

	data, err := readme.Load()
	require.NoError(t, err)
	assert.Len(t, data, 3*device.SectorSize)
	assert.Equal(t, f.img.Root.Find("usr/readme").Data, data[:5000])

	empty, err := f.root.Lookup("empty")
	require.NoError(t, err)
	data, err = empty.Load()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestDirent_ReadAt(t *testing.T) {
	f := newFixture(t)
	readme, err := f.root.Namei("usr/readme")
	require.NoError(t, err)
	data := f.img.Root.Find("usr/readme").Data

	t.Run("across a sector boundary", func(t *testing.T) {
		p := make([]byte, 100)
		n, err := readme.ReadAt(p, 2000)
		require.NoError(t, err)
		assert.Equal(t, 100, n)
		assert.Equal(t, data[2000:2100], p)
	})

	t.Run("short read at the end", func(t *testing.T) {
		p := make([]byte, 100)
		n, err := readme.ReadAt(p, 4950)
		require.ErrorIs(t, err, io.EOF)
		assert.Equal(t, 50, n)
		assert.Equal(t, data[4950:], p[:n])
	})

	t.Run("past the end", func(t *testing.T) {
		n, err := readme.ReadAt(make([]byte, 1), 5000)
		require.ErrorIs(t, err, io.EOF)
		assert.Zero(t, n)
	})

	t.Run("negative offset", func(t *testing.T) {
		_, err := readme.ReadAt(make([]byte, 1), -1)
		require.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("read all", func(t *testing.T) {
		got, err := readme.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("section reader", func(t *testing.T) {
		got, err := io.ReadAll(readme.Reader())
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("exact sectors", func(t *testing.T) {
		libc, err := f.root.Namei("usr/lib/libc.a")
		require.NoError(t, err)
		got, err := libc.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, f.img.Root.Find("usr/lib/libc.a").Data, got)
	})
}

func TestDirent_Close(t *testing.T) {
	f := newFixture(t)
	usr, err := f.root.Lookup("usr")
	require.NoError(t, err)

	require.NoError(t, usr.Close())
	require.NoError(t, usr.Close())

	_, err = usr.Lookup("readme")
	require.ErrorIs(t, err, ErrClosed)
	_, err = usr.ReadDir(make([]byte, 64))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, usr.ReadBlock(0, make([]byte, device.SectorSize)), ErrClosed)
	_, err = usr.ReadAll()
	require.ErrorIs(t, err, ErrClosed)

	// the parent is unaffected
	_, err = f.root.Lookup("usr")
	require.NoError(t, err)
}

func TestDirent_LookupBareTrailingDot(t *testing.T) {
	b := isotest.File("B", []byte("bee"))
	b.Identifier = "B."
	img := isotest.MustBuild(t, isotest.Dir("", b, isotest.File("C.TXT", nil)))
	vol, err := Open(img.Device(testUnit), testUnit)
	require.NoError(t, err)
	root, err := vol.Root()
	require.NoError(t, err)

	d, err := root.Lookup("B")
	require.NoError(t, err)
	assert.Equal(t, b.Extent, d.Sector())
	data, err := d.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "bee", string(data))

	_, err = root.Lookup("B.")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDirent_MalformedDirectory(t *testing.T) {
	img := isotest.MustBuild(t, testTree())
	// a record length too small for its identifier
	require.NoError(t, img.PatchRecord("", "usr", func(rec []byte) { rec[0] = 10 }))
	vol, err := Open(img.Device(testUnit), testUnit)
	require.NoError(t, err)
	root, err := vol.Root()
	require.NoError(t, err)

	// records ahead of the damage are still reachable
	a, err := root.Lookup("A")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = root.Lookup("C.TXT")
	require.ErrorIs(t, err, ErrMalformedRecord)
	require.NotErrorIs(t, err, ErrNotFound)

	_, err = root.Entries()
	require.ErrorIs(t, err, ErrMalformedRecord)

	n, err := root.ReadDir(make([]byte, 256))
	require.ErrorIs(t, err, ErrMalformedRecord)
	assert.Zero(t, n)

	_, err = NewFS(root).ReadDir(".")
	require.ErrorIs(t, err, ErrMalformedRecord)
	require.NotErrorIs(t, err, fs.ErrNotExist)
}
