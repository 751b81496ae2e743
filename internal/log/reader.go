package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SessionInfo holds information about a log session.
type SessionInfo struct {
	ID        string
	Timestamp time.Time
	Dir       string
}

// ProjectLog holds the content of a single project log file.
type ProjectLog struct {
	// Name is the log file name without the .log suffix.
	Name    string
	Content string
}

// ListSessions returns all sessions in the logs directory, sorted newest first.
func ListSessions(baseDir string) ([]SessionInfo, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read logs directory: %w", err)
	}

	var sessions []SessionInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		t, err := time.Parse(sessionLayout, e.Name())
		if err != nil {
			continue // skip non-session directories
		}
		sessions = append(sessions, SessionInfo{
			ID:        e.Name(),
			Timestamp: t,
			Dir:       filepath.Join(baseDir, e.Name()),
		})
	}

	sortNewestFirst(sessions)
	return sessions, nil
}

// ReadSessionLogs reads all log files from a session directory.
func ReadSessionLogs(sessionDir string) ([]ProjectLog, error) {
	entries, err := os.ReadDir(sessionDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	var logs []ProjectLog
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(sessionDir, e.Name()))
		if err != nil {
			continue
		}
		logs = append(logs, ProjectLog{
			Name:    strings.TrimSuffix(e.Name(), ".log"),
			Content: string(content),
		})
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].Name < logs[j].Name })
	return logs, nil
}

// ReadProjectLog reads a specific project's log from a session directory.
func ReadProjectLog(sessionDir, project string) (string, error) {
	content, err := os.ReadFile(filepath.Join(sessionDir, logFilename(project)))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no log found for %s", project)
		}
		return "", fmt.Errorf("failed to read log file: %w", err)
	}
	return string(content), nil
}
