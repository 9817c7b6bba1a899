package option

import (
	"github.com/rstms/cdrom-kit/pkg/logging"
)

type ExtractionProgressCallback func(
	currentFilename string,
	bytesTransferred int64,
	totalBytes int64,
	currentFileNumber int,
	totalFileCount int,
)

// ExtractOptions control how a directory tree is copied out of a volume.
type ExtractOptions struct {
	Overwrite                  bool
	ExtractionProgressCallback ExtractionProgressCallback
	Logger                     *logging.Logger
}

type ExtractOption func(*ExtractOptions)

// DefaultExtractOptions returns the options used when none are given.
func DefaultExtractOptions() *ExtractOptions {
	return &ExtractOptions{
		ExtractionProgressCallback: func(string, int64, int64, int, int) {},
		Logger:                     logging.DefaultLogger(),
	}
}

// WithExtractionProgress sets a progress callback function that will be called with progress updates.
// Parameters:
// - currentFilename: The path of the file currently being extracted.
// - bytesTransferred: The number of bytes written so far for the current file.
// - totalBytes: The total number of bytes of the current file.
// - currentFileNumber: The index of the current file being processed, starting at 1.
// - totalFileCount: The total number of files to be processed.
func WithExtractionProgress(callback ExtractionProgressCallback) ExtractOption {
	return func(o *ExtractOptions) {
		if callback != nil {
			o.ExtractionProgressCallback = callback
		}
	}
}

// WithOverwrite sets whether existing files in the output directory are replaced.
func WithOverwrite(overwrite bool) ExtractOption {
	return func(o *ExtractOptions) {
		o.Overwrite = overwrite
	}
}

func WithExtractLogger(logger *logging.Logger) ExtractOption {
	return func(o *ExtractOptions) {
		o.Logger = logger
	}
}
