package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// NewSimulationProgress returns a progress bar sized for trials and a callback
// that advances it by one. The callback is safe for concurrent use.
func NewSimulationProgress(w io.Writer, trials int) (*progressbar.ProgressBar, func()) {
	bar := progressbar.NewOptions(trials,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Simulating markets...[reset]"),
		progressbar.OptionThrottle(0),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)

	return bar, func() {
		if err := bar.Add(1); err != nil {
			slog.Debug("Failed to advance progress bar", "error", err)
		}
	}
}
