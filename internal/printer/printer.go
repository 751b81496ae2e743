// Package printer renders export plans for the CLI as text tables, JSON
// or YAML.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/terassyi/nsid/internal/action"
	"github.com/terassyi/nsid/internal/document"
	"github.com/terassyi/nsid/internal/project"
	"github.com/terassyi/nsid/internal/reversal"
)

// Format is a plan output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses the --output flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q, valid formats: text, json, yaml", s)
	}
}

// PlanOutput represents the structured output of a plan.
type PlanOutput struct {
	Project       string             `json:"project" yaml:"project"`
	Version       string             `json:"version" yaml:"version"`
	Encoding      string             `json:"encoding" yaml:"encoding"`
	Install       []PlanStep         `json:"install" yaml:"install"`
	Uninstall     []PlanStep         `json:"uninstall" yaml:"uninstall"`
	NonReversible []reversal.Warning `json:"nonReversible" yaml:"nonReversible"`
	Summary       PlanSummary        `json:"summary" yaml:"summary"`
}

// PlanStep is one action of a plan.
type PlanStep struct {
	Index       int         `json:"index" yaml:"index"`
	Kind        action.Kind `json:"kind" yaml:"kind"`
	Target      string      `json:"target" yaml:"target"`
	Description string      `json:"description" yaml:"description"`
	// Undoes is the install step a reverse step undoes.
	Undoes *int `json:"undoes,omitempty" yaml:"undoes,omitempty"`
}

// PlanSummary counts the steps of a plan.
type PlanSummary struct {
	Install       int `json:"install" yaml:"install"`
	Uninstall     int `json:"uninstall" yaml:"uninstall"`
	NonReversible int `json:"nonReversible" yaml:"nonReversible"`
}

// BuildOutput builds the PlanOutput for an assembled project.
func BuildOutput(spec *project.Spec, docs *document.Documents) PlanOutput {
	out := PlanOutput{
		Project:       spec.Name,
		Version:       spec.Version,
		Encoding:      string(docs.Encoding),
		Install:       make([]PlanStep, 0, docs.Sequence.Len()),
		Uninstall:     make([]PlanStep, 0),
		NonReversible: make([]reversal.Warning, 0),
	}

	for i, a := range docs.Sequence.All() {
		out.Install = append(out.Install, step(i, a))
	}
	if docs.Plan != nil {
		for i, a := range docs.Plan.Actions.All() {
			s := step(i, a)
			if i < len(docs.Plan.Origins) {
				origin := docs.Plan.Origins[i]
				s.Undoes = &origin
			}
			out.Uninstall = append(out.Uninstall, s)
		}
		out.NonReversible = append(out.NonReversible, docs.Plan.NonReversible...)
	}

	out.Summary = PlanSummary{
		Install:       len(out.Install),
		Uninstall:     len(out.Uninstall),
		NonReversible: len(out.NonReversible),
	}
	return out
}

func step(i int, a action.Action) PlanStep {
	return PlanStep{
		Index:       i,
		Kind:        a.Kind(),
		Target:      a.Target(),
		Description: action.Describe(a),
	}
}

// Print writes out in the given format.
func Print(w io.Writer, out PlanOutput, f Format, noColor bool) error {
	switch f {
	case FormatJSON:
		return ExportJSON(w, out)
	case FormatYAML:
		return ExportYAML(w, out)
	default:
		NewPlanPrinter(w, noColor).PrintPlan(out)
		return nil
	}
}

// ExportJSON writes the plan as JSON.
func ExportJSON(w io.Writer, out PlanOutput) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// ExportYAML writes the plan as YAML.
func ExportYAML(w io.Writer, out PlanOutput) error {
	data, err := yaml.MarshalWithOptions(out, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// PlanPrinter prints plans as text.
type PlanPrinter struct {
	writer       io.Writer
	titleColor   *color.Color
	installColor *color.Color
	removeColor  *color.Color
	warnColor    *color.Color
}

// NewPlanPrinter creates a new PlanPrinter.
func NewPlanPrinter(w io.Writer, noColor bool) *PlanPrinter {
	if noColor {
		color.NoColor = true
	}

	return &PlanPrinter{
		writer:       w,
		titleColor:   color.New(color.Bold),
		installColor: color.New(color.FgGreen),
		removeColor:  color.New(color.FgRed),
		warnColor:    color.New(color.FgYellow),
	}
}

// PrintPlan prints the install steps, the reverse steps and the actions
// the uninstaller leaves behind.
func (p *PlanPrinter) PrintPlan(out PlanOutput) {
	fmt.Fprintf(p.writer, "%s %s (%s)\n", p.titleColor.Sprint(out.Project), out.Version, out.Encoding)

	fmt.Fprintln(p.writer, "\nInstall:")
	printTable(p.writer, out.Install, stepFormatter{})

	fmt.Fprintln(p.writer, "\nUninstall:")
	printTable(p.writer, out.Uninstall, stepFormatter{reverse: true})

	if len(out.NonReversible) > 0 {
		fmt.Fprintln(p.writer, "\n"+p.warnColor.Sprint("Not reversible (left for manual cleanup):"))
		printTable(p.writer, out.NonReversible, warningFormatter{})
	}

	p.PrintSummary(out.Summary)
}

// PrintSummary prints the step counts.
func (p *PlanPrinter) PrintSummary(s PlanSummary) {
	fmt.Fprintf(p.writer, "\nSummary: %s to install, %s to reverse, %s not reversible\n",
		p.installColor.Sprintf("%d", s.Install),
		p.removeColor.Sprintf("%d", s.Uninstall),
		p.warnColor.Sprintf("%d", s.NonReversible),
	)
}

// rowFormatter converts a plan entry into table columns.
type rowFormatter[T any] interface {
	// Headers returns the column header names.
	Headers() []string
	// FormatRow converts a single entry into column values.
	FormatRow(item T) []string
}

// printTable is the generic table-printing pipeline:
// header → rows → flush.
func printTable[T any](w io.Writer, items []T, f rowFormatter[T]) {
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  "+strings.Join(f.Headers(), "\t"))
	for _, item := range items {
		fmt.Fprintln(tw, "  "+strings.Join(f.FormatRow(item), "\t"))
	}
	tw.Flush()
}

// stepFormatter formats PlanStep entries for table output.
type stepFormatter struct {
	reverse bool
}

func (f stepFormatter) Headers() []string {
	if f.reverse {
		return []string{"#", "UNDOES", "KIND", "ACTION"}
	}
	return []string{"#", "KIND", "ACTION"}
}

func (f stepFormatter) FormatRow(s PlanStep) []string {
	if f.reverse {
		undoes := "-"
		if s.Undoes != nil {
			undoes = strconv.Itoa(*s.Undoes)
		}
		return []string{strconv.Itoa(s.Index), undoes, string(s.Kind), s.Description}
	}
	return []string{strconv.Itoa(s.Index), string(s.Kind), s.Description}
}

// warningFormatter formats reversal warnings for table output.
type warningFormatter struct{}

func (warningFormatter) Headers() []string {
	return []string{"#", "KIND", "TARGET", "REASON"}
}

func (warningFormatter) FormatRow(w reversal.Warning) []string {
	return []string{strconv.Itoa(w.Index), string(w.Kind), w.Target, w.Reason}
}
