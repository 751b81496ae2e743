//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors for CLI output.
type Formatter struct {
	NoColor bool
	Writer  io.Writer

	errorColor    *color.Color
	codeColor     *color.Color
	fieldColor    *color.Color
	hintColor     *color.Color
	exampleColor  *color.Color
	expectedColor *color.Color
	gotColor      *color.Color
	dimColor      *color.Color
}

// NewFormatter creates a new Formatter.
func NewFormatter(w io.Writer, noColor bool) *Formatter {
	if noColor {
		color.NoColor = true
	}

	return &Formatter{
		NoColor:       noColor,
		Writer:        w,
		errorColor:    color.New(color.FgRed, color.Bold),
		codeColor:     color.New(color.FgRed),
		fieldColor:    color.New(color.FgCyan),
		hintColor:     color.New(color.FgGreen),
		exampleColor:  color.New(color.FgBlue),
		expectedColor: color.New(color.FgYellow),
		gotColor:      color.New(color.FgRed),
		dimColor:      color.New(color.FgHiBlack),
	}
}

// formatErrorHeader writes the error header with code.
// Format: "Error [E201]: message" or "Error: message" if no code.
func (f *Formatter) formatErrorHeader(sb *strings.Builder, code Code, message string) {
	sb.WriteString(f.errorColor.Sprint("Error"))
	if code != "" {
		sb.WriteString(" ")
		sb.WriteString(f.codeColor.Sprintf("[%s]", code))
	}
	sb.WriteString(f.errorColor.Sprint(": "))
	sb.WriteString(message)
	sb.WriteString("\n")
}

// Format formats an error for CLI display.
func (f *Formatter) Format(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	var actionErr *InvalidActionError
	var charErr *UnsupportedCharacterError
	var configErr *ConfigError
	var projectErr *ProjectError
	var exportErr *ExportError
	var compileErr *CompileError
	var baseErr *Error

	switch {
	case errors.As(err, &actionErr):
		f.formatInvalidActionError(&sb, actionErr)
	case errors.As(err, &charErr):
		f.formatUnsupportedCharacterError(&sb, charErr)
	case errors.As(err, &configErr):
		f.formatConfigError(&sb, configErr)
	case errors.As(err, &projectErr):
		f.formatProjectError(&sb, projectErr)
	case errors.As(err, &compileErr):
		f.formatCompileError(&sb, compileErr)
	case errors.As(err, &exportErr):
		f.formatBaseError(&sb, &exportErr.Base)
	case errors.As(err, &baseErr):
		f.formatBaseError(&sb, baseErr)
	default:
		sb.WriteString(f.errorColor.Sprint("Error: "))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatJSON formats an error as JSON.
func (f *Formatter) FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return nil, nil
	}

	var actionErr *InvalidActionError
	var charErr *UnsupportedCharacterError
	var configErr *ConfigError
	var projectErr *ProjectError
	var exportErr *ExportError
	var compileErr *CompileError
	var baseErr *Error

	switch {
	case errors.As(err, &actionErr):
		return json.MarshalIndent(actionErr, "", "  ")
	case errors.As(err, &charErr):
		return json.MarshalIndent(charErr, "", "  ")
	case errors.As(err, &configErr):
		return json.MarshalIndent(configErr, "", "  ")
	case errors.As(err, &projectErr):
		return json.MarshalIndent(projectErr, "", "  ")
	case errors.As(err, &compileErr):
		return json.MarshalIndent(compileErr, "", "  ")
	case errors.As(err, &exportErr):
		return json.MarshalIndent(exportErr, "", "  ")
	case errors.As(err, &baseErr):
		return json.MarshalIndent(baseErr, "", "  ")
	default:
		return json.MarshalIndent(map[string]string{"error": err.Error()}, "", "  ")
	}
}

func (f *Formatter) writeField(sb *strings.Builder, label, value string, c *color.Color) {
	if value == "" {
		return
	}
	sb.WriteString("  ")
	sb.WriteString(f.dimColor.Sprint(label))
	if c != nil {
		sb.WriteString(c.Sprint(value))
	} else {
		sb.WriteString(value)
	}
	sb.WriteString("\n")
}

func (f *Formatter) writeCause(sb *strings.Builder, cause error) {
	if cause == nil {
		return
	}
	sb.WriteString("\n  ")
	sb.WriteString(f.dimColor.Sprint("Cause: "))
	sb.WriteString(cause.Error())
	sb.WriteString("\n")
}

func (f *Formatter) formatInvalidActionError(sb *strings.Builder, err *InvalidActionError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)
	sb.WriteString("\n")

	f.writeField(sb, "Kind:     ", err.Kind, f.fieldColor)
	f.writeField(sb, "Field:    ", err.Field, nil)
	f.writeField(sb, "Expected: ", err.Expected, f.expectedColor)
	if err.Expected != "" {
		f.writeField(sb, "Got:      ", fmt.Sprintf("%q", err.Got), f.gotColor)
	}
	f.writeCause(sb, err.Base.Cause)

	f.formatHintAndExample(sb, &err.Base)
}

func (f *Formatter) formatUnsupportedCharacterError(sb *strings.Builder, err *UnsupportedCharacterError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)
	sb.WriteString("\n")

	f.writeField(sb, "Encoding: ", err.Encoding, f.fieldColor)
	f.writeField(sb, "Field:    ", err.Field, nil)
	f.writeField(sb, "Value:    ", fmt.Sprintf("%q", err.Value), nil)
	f.writeField(sb, "Offset:   ", fmt.Sprintf("%d", err.Offset), f.gotColor)

	f.formatHintAndExample(sb, &err.Base)
}

func (f *Formatter) formatConfigError(sb *strings.Builder, err *ConfigError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)
	sb.WriteString("\n")

	f.writeField(sb, "File: ", err.File, f.fieldColor)
	if err.Line > 0 {
		loc := fmt.Sprintf("%d", err.Line)
		if err.Column > 0 {
			loc += fmt.Sprintf(":%d", err.Column)
		}
		f.writeField(sb, "Line: ", loc, nil)
	}
	f.writeField(sb, "Path: ", err.Path, nil)
	f.writeCause(sb, err.Base.Cause)

	f.formatHintAndExample(sb, &err.Base)
}

func (f *Formatter) formatProjectError(sb *strings.Builder, err *ProjectError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)
	sb.WriteString("\n")

	f.writeField(sb, "Project:   ", err.Project, f.fieldColor)
	f.writeField(sb, "Field:     ", err.Field, nil)
	f.writeField(sb, "Lock file: ", err.LockFile, f.fieldColor)
	f.writeCause(sb, err.Base.Cause)

	f.formatHintAndExample(sb, &err.Base)
}

func (f *Formatter) formatCompileError(sb *strings.Builder, err *CompileError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)
	sb.WriteString("\n")

	f.writeField(sb, "Compiler: ", err.Compiler, f.fieldColor)
	f.writeField(sb, "Script:   ", err.Script, nil)
	f.writeCause(sb, err.Base.Cause)

	if out := strings.TrimSpace(err.Output); out != "" {
		sb.WriteString("\n")
		for line := range strings.SplitSeq(out, "\n") {
			sb.WriteString("    ")
			sb.WriteString(f.dimColor.Sprint(line))
			sb.WriteString("\n")
		}
	}

	f.formatHintAndExample(sb, &err.Base)
}

func (f *Formatter) formatBaseError(sb *strings.Builder, err *Error) {
	f.formatErrorHeader(sb, err.Code, err.Message)
	f.writeCause(sb, err.Cause)
	f.formatHintAndExample(sb, err)
}

func (f *Formatter) formatHintAndExample(sb *strings.Builder, err *Error) {
	if err.Hint != "" {
		sb.WriteString("\n")
		sb.WriteString(f.hintColor.Sprint("Hint: "))
		lines := strings.Split(err.Hint, "\n")
		sb.WriteString(lines[0])
		sb.WriteString("\n")
		for _, line := range lines[1:] {
			sb.WriteString("      ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	if err.Example != "" {
		sb.WriteString("\n")
		sb.WriteString(f.exampleColor.Sprint("Example:"))
		sb.WriteString("\n")
		for line := range strings.SplitSeq(err.Example, "\n") {
			sb.WriteString("  ")
			sb.WriteString(f.dimColor.Sprint(line))
			sb.WriteString("\n")
		}
	}
}
