package cdromfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamei(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		path string
		node string
		dir  bool
	}{
		{"usr/readme", "usr/readme", false},
		{"usr/lib/libc.a", "usr/lib/libc.a", false},
		{"/usr//lib/", "usr/lib", true},
		{"usr", "usr", true},
		{"A", "A", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d, err := Namei(f.root, tt.path)
			require.NoError(t, err)
			defer d.Close()

			node := f.img.Root.Find(tt.node)
			assert.Equal(t, node.Extent, d.Sector())
			assert.Equal(t, node.Length, d.Length())
			assert.Equal(t, tt.dir, d.IsDir())
		})
	}
}

func TestNamei_Empty(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"", "/", "///"} {
		d, err := Namei(f.root, path)
		require.NoError(t, err)
		assert.Same(t, f.root, d)
	}
}

func TestNamei_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.root.Namei("usr/missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `resolve "usr/missing"`)

	_, err = f.root.Namei("usr/..")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.root.Namei("usr/readme/x")
	require.ErrorIs(t, err, ErrNotDirectory)

	// start survives a failed walk
	d, err := f.root.Namei("usr")
	require.NoError(t, err)
	require.NoError(t, d.Close())
}

func TestNamei_Relative(t *testing.T) {
	f := newFixture(t)
	usr, err := f.root.Namei("usr")
	require.NoError(t, err)
	defer usr.Close()

	lib, err := usr.Namei("lib")
	require.NoError(t, err)
	assert.Equal(t, f.img.Root.Find("usr/lib").Extent, lib.Sector())

	// the start handle stays open after the walk
	_, err = usr.Lookup("readme")
	require.NoError(t, err)
}

func TestNamei_Closed(t *testing.T) {
	f := newFixture(t)
	usr, err := f.root.Namei("usr")
	require.NoError(t, err)
	require.NoError(t, usr.Close())

	_, err = Namei(usr, "lib")
	require.ErrorIs(t, err, ErrClosed)
	_, err = Namei(nil, "lib")
	require.ErrorIs(t, err, ErrClosed)
}
