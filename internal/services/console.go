package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/imyashkale/bigpanda-notifier/internal/logger"
	"github.com/imyashkale/bigpanda-notifier/internal/models"
)

const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Console collects the lines a notification writes to a build's console.
// Every line is mirrored to the service log at debug level.
type Console struct {
	lines []models.ConsoleLine
	mu    sync.Mutex
	build string
}

// NewConsole creates a console for the named build
func NewConsole(build string) *Console {
	return &Console{
		lines: make([]models.ConsoleLine, 0),
		build: build,
	}
}

// Println writes an info line
func (c *Console) Println(message string) {
	c.log(LevelInfo, message)
}

// Printf writes a formatted info line
func (c *Console) Printf(format string, args ...interface{}) {
	c.log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn writes a warning line
func (c *Console) Warn(message string) {
	c.log(LevelWarning, message)
}

// Error writes an error line
func (c *Console) Error(message string) {
	c.log(LevelError, message)
}

func (c *Console) log(level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = append(c.lines, models.ConsoleLine{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	})

	logger.WithFields(map[string]interface{}{
		"build":         c.build,
		"console_level": level,
	}).Debug(message)
}

// Lines returns a copy of everything written so far
func (c *Console) Lines() []models.ConsoleLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	linesCopy := make([]models.ConsoleLine, len(c.lines))
	copy(linesCopy, c.lines)
	return linesCopy
}
