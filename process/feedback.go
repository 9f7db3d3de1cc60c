package process

import (
	"context"
	"sync"

	"github.com/wgdzlh/gdalref/log"

	"go.uber.org/zap"
)

// 运行中算法的进度与消息回调
type Feedback interface {
	SetProgress(percent float64)
	PushInfo(msg string, fields ...zap.Field)
	PushDebug(msg string, fields ...zap.Field)
	PushWarning(msg string, fields ...zap.Field)
}

func Canceled(ctx context.Context) bool {
	return ctx.Err() != nil
}

// 消息转发到全局logger，进度按debug级别记录
type LogFeedback struct {
	Tag string

	mu       sync.Mutex
	progress float64
}

func NewLogFeedback(tag string) *LogFeedback {
	return &LogFeedback{Tag: tag}
}

func (f *LogFeedback) SetProgress(percent float64) {
	f.mu.Lock()
	f.progress = percent
	f.mu.Unlock()
	log.Debug(f.Tag+"progress", zap.Float64("percent", percent))
}

func (f *LogFeedback) Progress() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress
}

func (f *LogFeedback) PushInfo(msg string, fields ...zap.Field) {
	log.Info(f.Tag+msg, fields...)
}

func (f *LogFeedback) PushDebug(msg string, fields ...zap.Field) {
	log.Debug(f.Tag+msg, fields...)
}

func (f *LogFeedback) PushWarning(msg string, fields ...zap.Field) {
	log.Warn(f.Tag+msg, fields...)
}

// 记录全部进度与消息（测试或嵌入方使用）
type RecordingFeedback struct {
	mu       sync.Mutex
	Progress []float64
	Infos    []string
	Debugs   []string
	Warnings []string
}

func (f *RecordingFeedback) SetProgress(percent float64) {
	f.mu.Lock()
	f.Progress = append(f.Progress, percent)
	f.mu.Unlock()
}

func (f *RecordingFeedback) PushInfo(msg string, _ ...zap.Field) {
	f.mu.Lock()
	f.Infos = append(f.Infos, msg)
	f.mu.Unlock()
}

func (f *RecordingFeedback) PushDebug(msg string, _ ...zap.Field) {
	f.mu.Lock()
	f.Debugs = append(f.Debugs, msg)
	f.mu.Unlock()
}

func (f *RecordingFeedback) PushWarning(msg string, _ ...zap.Field) {
	f.mu.Lock()
	f.Warnings = append(f.Warnings, msg)
	f.mu.Unlock()
}

// 最近一次进度，无则返回-1
func (f *RecordingFeedback) LastProgress() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Progress) == 0 {
		return -1
	}
	return f.Progress[len(f.Progress)-1]
}
