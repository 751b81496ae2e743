package document

import (
	"fmt"
	"os"
	"path/filepath"
)

// Files names the outputs of WriteSplit.
type Files struct {
	// Script is the combined script, or the install document when split.
	Script string `json:"script" yaml:"script"`
	// Uninstall is set only when the documents are written separately.
	Uninstall string `json:"uninstall,omitempty" yaml:"uninstall,omitempty"`
}

// writeTemp is replaced in tests to fail after a partial write.
var writeTemp = os.WriteFile

// WriteFile encodes the combined script and writes it to path through a
// temp file and rename, so a failure never leaves a partial script.
func WriteFile(path string, docs *Documents) error {
	return writeEncoded(path, docs, docs.Combined())
}

// WriteSplit writes the install document to path and the uninstall
// document next to it as <base>_uninstall<ext>. The install document
// includes the uninstall document so makensis still sees one script. The
// include is relative to the install document, not the working directory.
func WriteSplit(path string, docs *Documents) (Files, error) {
	ext := filepath.Ext(path)
	unPath := path[:len(path)-len(ext)] + "_uninstall" + ext

	// Encode both before writing either.
	install := docs.Install + fmt.Sprintf("\n!include \"${__FILEDIR__}\\%s\"\n", filepath.Base(unPath))
	if _, err := docs.Encoding.Encode(install); err != nil {
		return Files{}, err
	}
	if _, err := docs.Encoding.Encode(docs.Uninstall); err != nil {
		return Files{}, err
	}

	if err := writeEncoded(unPath, docs, docs.Uninstall); err != nil {
		return Files{}, err
	}
	if err := writeEncoded(path, docs, install); err != nil {
		os.Remove(unPath)
		return Files{}, err
	}
	return Files{Script: path, Uninstall: unPath}, nil
}

func writeEncoded(path string, docs *Documents, text string) error {
	data, err := docs.Encoding.Encode(text)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tmpPath := path + ".tmp"
	if err := writeTemp(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp script: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename script: %w", err)
	}
	return nil
}
