package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/format"
	"github.com/goccy/go-yaml"
	"github.com/terassyi/nsid/cuemodule"
	nsiderr "github.com/terassyi/nsid/internal/errors"
)

// Format is the on-disk format of a project file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported project file extension %q (want .json, .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// Load reads a project file and applies defaults. The file is checked
// against the embedded schema only when it is CUE; Validate must still be
// called before exporting.
func Load(path string) (*Spec, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, nsiderr.NewConfigError("cannot load project file", err).WithFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nsiderr.NewConfigError("cannot read project file", err).WithFile(path)
	}
	return Parse(data, f, path)
}

// Parse decodes project file content. name is used in error messages and
// CUE positions.
func Parse(data []byte, f Format, name string) (*Spec, error) {
	var (
		jsonData []byte
		err      error
	)
	switch f {
	case FormatJSON:
		jsonData = data
	case FormatYAML:
		jsonData, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, nsiderr.NewConfigError("invalid YAML", err).WithFile(name)
		}
	case FormatCUE:
		jsonData, err = evalCUE(data, name)
		if err != nil {
			return nil, err
		}
	default:
		return nil, nsiderr.NewConfigError(fmt.Sprintf("unknown project format %q", f), nil).WithFile(name)
	}

	spec := &Spec{}
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.DisallowUnknownFields()
	if err := dec.Decode(spec); err != nil {
		return nil, decodeError(err, name)
	}
	spec.SetDefaults()
	return spec, nil
}

// evalCUE unifies the file with #Project and returns the concrete result
// as JSON.
func evalCUE(data []byte, name string) ([]byte, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(cuemodule.SchemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile embedded schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, cueError("invalid CUE", err, name)
	}

	project := schema.LookupPath(cue.ParsePath("#Project")).Unify(value)
	if err := project.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError("project does not match schema", err, name)
	}

	out, err := project.MarshalJSON()
	if err != nil {
		return nil, cueError("failed to export project", err, name)
	}
	return out, nil
}

// cueError converts the first CUE error into a ConfigError carrying its
// position and path.
func cueError(message string, err error, name string) *nsiderr.ConfigError {
	cerr := nsiderr.NewConfigError(message, err).WithFile(name)
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return cerr
	}
	first := errs[0]
	if pos := first.Position(); pos.IsValid() {
		cerr.WithLocation(pos.Line(), pos.Column())
	}
	if path := first.Path(); len(path) > 0 {
		cerr.WithPath(strings.Join(path, "."))
	}
	if len(errs) > 1 {
		cerr.Base.Details = map[string]any{"errors": len(errs)}
	}
	return cerr
}

// decodeError wraps JSON decoding failures. Action errors keep their own
// type so the CLI can show the offending kind and field.
func decodeError(err error, name string) error {
	var actionErr *nsiderr.InvalidActionError
	if errors.As(err, &actionErr) {
		return err
	}
	cerr := nsiderr.NewConfigError("invalid project file", err).WithFile(name)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		cerr.WithPath(typeErr.Field)
	}
	return cerr
}

// Marshal encodes the Spec in the given format.
func (s *Spec) Marshal(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal project: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		jsonData, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal project: %w", err)
		}
		data, err := yaml.JSONToYAML(jsonData)
		if err != nil {
			return nil, fmt.Errorf("failed to convert project to YAML: %w", err)
		}
		return data, nil
	case FormatCUE:
		return s.toCUE()
	default:
		return nil, fmt.Errorf("unknown project format %q", f)
	}
}

// toCUE renders the Spec as a formatted CUE file in package nsid.
func (s *Spec) toCUE() ([]byte, error) {
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(jsonData)
	if v.Err() != nil {
		return nil, fmt.Errorf("failed to encode project: %w", v.Err())
	}

	b, err := format.Node(v.Syntax())
	if err != nil {
		return nil, fmt.Errorf("failed to format project: %w", err)
	}

	return append([]byte("package nsid\n\n"), b...), nil
}
