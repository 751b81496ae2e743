package ui

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestProgressManager_NonTTY(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManager(&buf, 2, false)

	pm.HandleEvent(Event{Type: EventStart, Project: "tool.yaml"})
	pm.HandleEvent(Event{Type: EventComplete, Project: "Tool", Output: "dist/Tool.nsi", NonReversible: 2})
	pm.HandleEvent(Event{Type: EventStart, Project: "broken.yaml"})
	pm.HandleEvent(Event{Type: EventError, Project: "broken.yaml", Err: errors.New("E101 invalid action")})
	pm.Wait()

	out := buf.String()
	assert.Contains(t, out, "  => tool.yaml\n")
	assert.Contains(t, out, "✓ Tool -> dist/Tool.nsi")
	assert.Contains(t, out, "✗ broken.yaml failed: E101 invalid action")
	assert.Equal(t, ExportResults{Exported: 1, Failed: 1, NonReversible: 2}, pm.Results())
}

func TestProgressManager_TTY(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManager(&buf, 4, true)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pm.HandleEvent(Event{Type: EventStart, Project: "p"})
			pm.HandleEvent(Event{Type: EventComplete, Project: "p", Output: "p.nsi"})
		}()
	}
	wg.Wait()
	pm.Wait()

	assert.Equal(t, 4, pm.Results().Exported)
	assert.NotContains(t, buf.String(), "=> p")
}

func TestProgressManager_TTY_Aborted(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManager(&buf, 3, true)

	pm.HandleEvent(Event{Type: EventError, Project: "a", Err: errors.New("boom")})
	// the other projects never report; Wait must still return
	pm.Wait()

	assert.Equal(t, 1, pm.Results().Failed)
}

func TestPrintExportSummary(t *testing.T) {
	tests := []struct {
		name     string
		results  ExportResults
		contains []string
		excludes []string
	}{
		{
			name:     "success",
			results:  ExportResults{Exported: 3},
			contains: []string{"Exported: 3", "Export complete!"},
			excludes: []string{"Failed", "Not reversible"},
		},
		{
			name:     "with warnings and failures",
			results:  ExportResults{Exported: 1, Failed: 1, NonReversible: 2},
			contains: []string{"Exported: 1", "Not reversible: 2", "Failed:   1", "Export completed with errors"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintExportSummary(&buf, tt.results)
			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.False(t, strings.Contains(out, s), "unexpected %q", s)
			}
		})
	}
}
