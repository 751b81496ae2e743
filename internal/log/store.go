// Package log persists makensis output of failed compiles so it can be
// inspected after the terminal scrolled past it.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// sessionLayout names session directories.
const sessionLayout = "20060102T150405"

// DefaultKeepSessions is how many sessions Cleanup keeps by default.
const DefaultKeepSessions = 10

// Store writes compile logs into one session directory per nsid run.
// The directory is created on the first recorded failure.
type Store struct {
	baseDir    string
	sessionID  string
	sessionDir string
	now        func() time.Time
}

// NewStore creates a new Store with a new session under baseDir.
func NewStore(baseDir string) *Store {
	sessionID := time.Now().Format(sessionLayout)
	return &Store{
		baseDir:    baseDir,
		sessionID:  sessionID,
		sessionDir: filepath.Join(baseDir, sessionID),
		now:        time.Now,
	}
}

// SessionDir returns the path to the current session directory.
func (s *Store) SessionDir() string {
	return s.sessionDir
}

// RecordFailure writes the compiler output of a failed compile of
// project and returns the log file path.
func (s *Store) RecordFailure(project, script, output string, cause error) (string, error) {
	if err := os.MkdirAll(s.sessionDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	logPath := filepath.Join(s.sessionDir, logFilename(project))
	if err := os.WriteFile(logPath, []byte(buildLogContent(project, script, output, cause, s.now())), 0644); err != nil {
		return "", fmt.Errorf("failed to write log file: %w", err)
	}
	slog.Debug("compile log written", "project", project, "path", logPath)
	return logPath, nil
}

// Cleanup removes old session directories, keeping the most recent keepSessions.
func (s *Store) Cleanup(keepSessions int) error {
	sessions, err := ListSessions(s.baseDir)
	if err != nil {
		return err
	}
	if len(sessions) <= keepSessions {
		return nil
	}

	for _, session := range sessions[keepSessions:] {
		if err := os.RemoveAll(session.Dir); err != nil {
			slog.Warn("failed to remove old log session", "dir", session.Dir, "error", err)
		}
	}
	return nil
}

// logFilename maps a project name to a file name safe on every platform.
func logFilename(project string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, project)
	return safe + ".log"
}

// buildLogContent creates the log file content with a header.
func buildLogContent(project, script, output string, cause error, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# nsid compile log\n")
	fmt.Fprintf(&b, "# Project: %s\n", project)
	fmt.Fprintf(&b, "# Script: %s\n", script)
	fmt.Fprintf(&b, "# Timestamp: %s\n", at.Format(time.RFC3339))
	if cause != nil {
		fmt.Fprintf(&b, "# Error: %s\n", cause)
	}
	b.WriteString("\n")
	b.WriteString(output)
	if output != "" && !strings.HasSuffix(output, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// sortNewestFirst orders sessions by timestamp, newest first.
func sortNewestFirst(sessions []SessionInfo) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
}
