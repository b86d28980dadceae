package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ryan-Ardito/raytracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger. Carriage returns and surrounding whitespace
// used for terminal progress lines are stripped; blank messages are dropped.
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := strings.TrimSpace(strings.ReplaceAll(fmt.Sprintf(format, args...), "\r", ""))
	if message == "" || wl.consoleChan == nil {
		return
	}

	// Drop the message when the channel is full
	select {
	case wl.consoleChan <- ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   message,
		Timestamp: time.Now(),
		Level:     "info",
	}:
	default:
	}
}
