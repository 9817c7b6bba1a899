package main

import (
	"fmt"
	"os"
	"time"

	"github.com/bgrewell/usage"
	"github.com/rstms/cdrom-kit"
	"github.com/rstms/cdrom-kit/pkg/logging"
	"github.com/rstms/cdrom-kit/pkg/option"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

var (
	version = "dev"
)

// truncateString truncates the input string to the specified max length.
// If truncation occurs, it prepends "..." to indicate the string has been shortened.
func truncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	if maxLength <= 3 {
		return input[len(input)-maxLength:]
	}
	return "..." + input[len(input)-(maxLength-3):]
}

// progressMessage formats one progress line to fit width columns.
func progressMessage(width int, currentFilename string, bytesTransferred, totalBytes int64, currentFileNumber, totalFileCount int) string {
	percent := 100.0
	if totalBytes > 0 {
		percent = float64(bytesTransferred) / float64(totalBytes) * 100
	}
	fixedPart := fmt.Sprintf(" [%d/%d] ", currentFileNumber, totalFileCount)
	suffixPart := fmt.Sprintf(" - %.2f%%", percent)

	availableSpace := max(width-len(fixedPart)-len(suffixPart)-6, 10)
	return fmt.Sprintf("%s%s%s", fixedPart, truncateString(currentFilename, availableSpace), suffixPart)
}

// CreateProgressCallback returns a callback that updates the spinner's message.
func CreateProgressCallback(spinner *yacspin.Spinner) option.ExtractionProgressCallback {
	return func(
		currentFilename string,
		bytesTransferred int64,
		totalBytes int64,
		currentFileNumber int,
		totalFileCount int,
	) {
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 80
		}
		spinner.Message(progressMessage(width, currentFilename, bytesTransferred, totalBytes, currentFileNumber, totalFileCount))
	}
}

// InitializeSpinner sets up and starts the yacspin spinner.
func InitializeSpinner() (*yacspin.Spinner, error) {
	settings := yacspin.Config{
		Frequency:         100 * time.Millisecond,
		ShowCursor:        false,
		SpinnerAtEnd:      false,
		CharSet:           yacspin.CharSets[14],
		Colors:            []string{"fgHiCyan"},
		StopColors:        []string{"fgHiGreen"},
		StopFailColors:    []string{"fgHiRed"},
		StopFailCharacter: "✗",
		StopCharacter:     "✓",
	}

	spinner, err := yacspin.New(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create spinner: %w", err)
	}
	if err := spinner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start spinner: %w", err)
	}
	return spinner, nil
}

func main() {

	u := usage.NewUsage()
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	debug := u.AddBooleanOption("v", "verbose", false, "Enable verbose (debug) logging", "", nil)
	trace := u.AddBooleanOption("t", "trace", false, "Enable trace logging", "", nil)
	force := u.AddBooleanOption("f", "force", false, "Overwrite existing files", "", nil)
	lenient := u.AddBooleanOption("l", "lenient", false, "Allow extents past the recorded volume size", "", nil)
	isoPath := u.AddArgument(1, "iso-path", "Path to the ISO image", "")
	outputDir := u.AddArgument(2, "output-dir", "Output directory for extracted files (default ./extracted)", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		fmt.Println("cdextract v" + version)
		u.PrintUsage()
		os.Exit(0)
	}

	if isoPath == nil || *isoPath == "" {
		u.PrintError(fmt.Errorf("location of the iso file <iso-path> must be provided"))
		os.Exit(1)
	}
	output := "./extracted"
	if outputDir != nil && *outputDir != "" {
		output = *outputDir
	}

	logger := logging.DefaultLogger()
	switch {
	case *trace:
		logger = logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_TRACE, true))
	case *debug:
		logger = logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_DEBUG, true))
	}

	img, err := cdrom.Open(*isoPath, option.WithLogger(logger), option.WithStrictBounds(!*lenient))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open ISO: %v\n", err)
		os.Exit(1)
	}

	opts := []option.ExtractOption{
		option.WithOverwrite(*force),
		option.WithExtractLogger(logger),
	}
	spinner, err := InitializeSpinner()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize spinner: %v\n", err)
		fmt.Fprintf(os.Stderr, "Progress updates will be disabled.\n")
	} else {
		opts = append(opts, option.WithExtractionProgress(CreateProgressCallback(spinner)))
	}

	err = img.Extract(output, opts...)
	img.Close()
	if err != nil {
		if spinner != nil {
			spinner.StopFailMessage(fmt.Sprintf("Failed to extract image: %v", err))
			spinner.StopFail()
		} else {
			fmt.Fprintf(os.Stderr, "Failed to extract image: %v\n", err)
		}
		os.Exit(1)
	}
	if spinner != nil {
		spinner.StopMessage(fmt.Sprintf(" All files extracted successfully to %s!", output))
		spinner.Stop()
	} else {
		fmt.Printf("All files extracted successfully to %s!\n", output)
	}
}
