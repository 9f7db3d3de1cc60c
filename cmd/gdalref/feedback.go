package main

import (
	"os"
	"time"

	"github.com/wgdzlh/gdalref/process"

	"github.com/schollz/progressbar/v3"
)

// 终端进度条，消息写日志
type barFeedback struct {
	*process.LogFeedback
	bar *progressbar.ProgressBar
}

func newBarFeedback(description string, quiet bool) *barFeedback {
	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100 * time.Millisecond),
		progressbar.OptionClearOnFinish(),
	}
	if quiet {
		opts = append(opts, progressbar.OptionSetVisibility(false))
	}
	return &barFeedback{
		LogFeedback: process.NewLogFeedback(description + ": "),
		bar:         progressbar.NewOptions64(100, opts...),
	}
}

func (f *barFeedback) SetProgress(percent float64) {
	f.LogFeedback.SetProgress(percent)
	p := int(percent)
	if p > 100 {
		p = 100
	}
	_ = f.bar.Set(p)
}

func (f *barFeedback) Finish() {
	_ = f.bar.Finish()
}
