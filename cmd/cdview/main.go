package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bgrewell/usage"
	"github.com/rstms/cdrom-kit"
	"github.com/rstms/cdrom-kit/pkg/cdromfs"
	"github.com/rstms/cdrom-kit/pkg/logging"
	"github.com/rstms/cdrom-kit/pkg/option"
)

func main() {

	u := usage.NewUsage()
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print verbose output", "", nil)
	trace := u.AddBooleanOption("t", "trace", false, "Print every lookup and sector read", "", nil)
	isoPath := u.AddArgument(1, "iso-path", "Path to the ISO image", "")
	filePath := u.AddArgument(2, "path", "Directory to list or file to print, relative to the image root", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if isoPath == nil || *isoPath == "" {
		u.PrintError(fmt.Errorf("location of the iso file <iso-path> must be provided"))
		os.Exit(1)
	}

	logger := logging.DefaultLogger()
	switch {
	case *trace:
		logger = logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_TRACE, true))
	case *verbose:
		logger = logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_DEBUG, true))
	}

	img, err := cdrom.Open(*isoPath, option.WithLogger(logger))
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	defer img.Close()

	target := ""
	if filePath != nil {
		target = *filePath
	}
	if err := show(os.Stdout, img, target); err != nil {
		u.PrintError(err)
		img.Close()
		os.Exit(1)
	}
}

// show lists target when it is a directory and copies its contents to w otherwise.
func show(w io.Writer, img *cdrom.Image, target string) error {
	d, err := img.Namei(target)
	if err != nil {
		return err
	}
	if d != img.Root() {
		defer d.Close()
	}

	if !d.IsDir() {
		_, err := io.Copy(w, d.Reader())
		return err
	}

	if target == "" {
		fmt.Fprintf(w, "%s\n", img.Volume())
	}
	entries, err := d.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsSpecial() {
			continue
		}
		fmt.Fprintln(w, formatEntry(e))
	}
	return nil
}

func formatEntry(e cdromfs.Entry) string {
	kind := "-"
	if e.Dir {
		kind = "d"
	}
	return fmt.Sprintf("%s %10d %s %8d %s", kind, e.Length, e.Recorded.Format("2006-01-02 15:04"), e.Sector, e.Name)
}
