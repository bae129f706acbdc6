package main

import (
	"io"

	"github.com/schollz/progressbar/v3"

	"marquee/internal/model"
)

// newProgress returns a boosting progress callback drawing a bar on w, and a
// func that clears it. Non-terminal writers get no bar.
func newProgress(w io.Writer, enabled bool) (model.ProgressFunc, func()) {
	if !enabled || !shouldColorize(w) {
		return nil, func() {}
	}
	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("Fitting gradient boosting"),
				progressbar.OptionSetWidth(30),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}
	finish := func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}
	return progress, finish
}
