package config

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sigil-io/agent/internal/models"
)

// agentLogger is a logrus hook keeping a ring buffer of recent events so
// the daemon can expose them without touching log files.
type agentLogger struct {
	sessionUID  uuid.UUID
	eventBuffer []*models.LogEntry
	maxSize     int
	currentPos  int
	isFull      bool
	mu          sync.RWMutex
}

func NewAgentLogger() *agentLogger {
	return &agentLogger{
		sessionUID:  uuid.New(),
		eventBuffer: make([]*models.LogEntry, 1000),
		maxSize:     1000,
		currentPos:  0,
		isFull:      false,
	}
}

func (a *agentLogger) Fire(entry *logrus.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.eventBuffer[a.currentPos] = models.NewLogEntry(entry)
	a.currentPos = (a.currentPos + 1) % a.maxSize

	if a.currentPos == 0 {
		a.isFull = true
	}

	return nil
}

func (a *agentLogger) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}

func (a *agentLogger) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.eventBuffer = make([]*models.LogEntry, a.maxSize)
	a.currentPos = 0
	a.isFull = false
}

// GetEvents returns the buffered events oldest first.
func (a *agentLogger) GetEvents() []*models.LogEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.isFull {
		result := make([]*models.LogEntry, a.currentPos)
		copy(result, a.eventBuffer[:a.currentPos])
		return result
	}

	result := make([]*models.LogEntry, a.maxSize)
	copy(result, a.eventBuffer[a.currentPos:])
	copy(result[a.maxSize-a.currentPos:], a.eventBuffer[:a.currentPos])
	return result
}

func (a *agentLogger) GetRecentEvents(count int) []*models.LogEntry {
	events := a.GetEvents()
	if len(events) <= count {
		return events
	}
	return events[len(events)-count:]
}
