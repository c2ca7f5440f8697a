package admin

import (
	"fmt"
	"sync"
	"time"
)

// DefaultLogSize bounds the operation log.
const DefaultLogSize = 200

// Log keeps the most recent operator-facing messages.
type Log struct {
	mu    sync.Mutex
	lines []string
	size  int
	now   func() time.Time
}

func NewLog(size int) *Log {
	if size <= 0 {
		size = DefaultLogSize
	}
	return &Log{size: size, now: time.Now}
}

func (l *Log) Add(format string, args ...any) {
	line := fmt.Sprintf("[%s] SYSTEM: %s", l.now().Format("15:04:05"), fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if over := len(l.lines) - l.size; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
}

// Lines returns the log oldest first.
func (l *Log) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
