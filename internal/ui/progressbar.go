package ui

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// NewRowBar returns a progress bar sized to a known row total.
// Pass -1 when the total is unknown; the bar degrades to a spinner.
func NewRowBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(false),
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
	)
}

// NewByteBar returns a progress bar tracking bytes consumed from a source file.
func NewByteBar(totalBytes int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(false),
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
	)
}
