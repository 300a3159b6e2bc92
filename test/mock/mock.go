package mock

import (
	"fmt"
	"strings"
	"sync"
)

// MockLog records log lines instead of printing them.
type MockLog struct {
	Name  string
	lines []string
	mutex sync.Mutex
}

func (l *MockLog) record(level string, msg string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.lines = append(l.lines, "["+level+"] "+msg)
}

func (l *MockLog) Debug(args ...interface{}) {
	l.record("DEBUG", fmt.Sprint(args...))
}

func (l *MockLog) Debugf(format string, args ...interface{}) {
	l.record("DEBUG", fmt.Sprintf(format, args...))
}

func (l *MockLog) Info(args ...interface{}) {
	l.record("INFO", fmt.Sprint(args...))
}

func (l *MockLog) Infof(format string, args ...interface{}) {
	l.record("INFO", fmt.Sprintf(format, args...))
}

func (l *MockLog) Warn(args ...interface{}) {
	l.record("WARN", fmt.Sprint(args...))
}

func (l *MockLog) Warnf(format string, args ...interface{}) {
	l.record("WARN", fmt.Sprintf(format, args...))
}

func (l *MockLog) Error(args ...interface{}) {
	l.record("ERROR", fmt.Sprint(args...))
}

func (l *MockLog) Errorf(format string, args ...interface{}) {
	l.record("ERROR", fmt.Sprintf(format, args...))
}

func (l *MockLog) Lines() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]string(nil), l.lines...)
}

// Count returns how many recorded lines have the given level.
func (l *MockLog) Count(level string) int {
	n := 0
	for _, line := range l.Lines() {
		if strings.HasPrefix(line, "["+level+"]") {
			n++
		}
	}
	return n
}

func GetMockLogger(name string) *MockLog {
	return &MockLog{Name: name}
}
