package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// EventType is the kind of an export event.
type EventType int

const (
	EventStart EventType = iota
	EventComplete
	EventError
)

// Event reports the progress of one project export.
type Event struct {
	Type    EventType
	Project string
	// Output is the written script, set on EventComplete.
	Output string
	// NonReversible counts the actions the uninstaller leaves behind.
	NonReversible int
	Err           error
}

// ExportResults counts export outcomes.
type ExportResults struct {
	Exported      int
	Failed        int
	NonReversible int
}

// ProgressManager shows export progress. On a terminal it draws a single
// bar over all projects; otherwise it prints one line per event.
type ProgressManager struct {
	mu       sync.Mutex
	w        io.Writer
	isTTY    bool
	progress *mpb.Progress
	bar      *mpb.Bar
	results  ExportResults
}

// NewProgressManager creates a progress manager for total projects.
func NewProgressManager(w io.Writer, total int, isTTY bool) *ProgressManager {
	pm := &ProgressManager{
		w:     w,
		isTTY: isTTY,
	}

	if isTTY {
		pm.progress = mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
		pm.bar = pm.progress.AddBar(int64(total),
			mpb.BarFillerClearOnComplete(),
			mpb.PrependDecorators(
				decor.Name("  Exporting ", decor.WC{W: 12, C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d", decor.WC{W: 8}),
			),
			mpb.AppendDecorators(
				decor.OnComplete(decor.Percentage(decor.WC{W: 5}), " done"),
			),
		)
	}

	return pm
}

// HandleEvent records an event. It is safe for concurrent use.
func (pm *ProgressManager) HandleEvent(event Event) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	style := NewStyle()
	switch event.Type {
	case EventStart:
		if !pm.isTTY {
			fmt.Fprintf(pm.w, "  => %s\n", event.Project)
		}
	case EventComplete:
		pm.results.Exported++
		pm.results.NonReversible += event.NonReversible
		if pm.isTTY {
			pm.bar.Increment()
			return
		}
		fmt.Fprintf(pm.w, "  %s %s -> %s\n", style.SuccessMark, event.Project, style.Path.Sprint(event.Output))
	case EventError:
		pm.results.Failed++
		if pm.isTTY {
			pm.bar.Increment()
			return
		}
		fmt.Fprintf(pm.w, "  %s %s failed: %v\n", style.FailMark, event.Project, event.Err)
	}
}

// Wait stops the bar and waits for it to finish rendering. Projects that
// never reported, because an earlier one failed, leave the bar aborted.
func (pm *ProgressManager) Wait() {
	if pm.progress == nil {
		return
	}
	pm.mu.Lock()
	if !pm.bar.Completed() {
		pm.bar.Abort(false)
	}
	pm.mu.Unlock()
	pm.progress.Wait()
}

// Results returns the outcome counts so far.
func (pm *ProgressManager) Results() ExportResults {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.results
}

// PrintExportSummary prints the export summary.
func PrintExportSummary(w io.Writer, results ExportResults) {
	style := NewStyle()

	fmt.Fprintln(w)
	style.Header.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %s Exported: %d\n", style.SuccessMark, results.Exported)
	if results.NonReversible > 0 {
		fmt.Fprintf(w, "  %s Not reversible: %d\n", style.WarnMark, results.NonReversible)
	}
	if results.Failed > 0 {
		fmt.Fprintf(w, "  %s Failed:   %d\n", style.FailMark, results.Failed)
	}

	fmt.Fprintln(w)
	if results.Failed == 0 {
		style.Success.Fprintln(w, "Export complete!")
	} else {
		style.Failure.Fprintln(w, "Export completed with errors")
	}
}
