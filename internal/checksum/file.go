package checksum

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SumsFileName is the sums file written next to exported scripts.
const SumsFileName = "SHA256SUMS"

// Entry is one line of a sums file.
type Entry struct {
	Digest Digest
	Name   string
}

// WriteGNU writes entries in GNU coreutils format ("<hash>  <name>"),
// sorted by name so the file is stable across runs.
func WriteGNU(w io.Writer, entries []Entry) error {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	bw := bufio.NewWriter(w)
	for _, e := range sorted {
		if _, err := fmt.Fprintf(bw, "%s  %s\n", e.Digest, e.Name); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseGNU parses GNU coreutils format sums. Both text ("  ") and binary
// (" *") mode markers are accepted.
func ParseGNU(content []byte) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		digest, name, ok := strings.Cut(line, " ")
		name = strings.TrimPrefix(strings.TrimLeft(name, " "), "*")
		if !ok || name == "" || DetectAlgorithm(Digest(digest)) == "" {
			return nil, fmt.Errorf("line %d: malformed checksum line %q", n, line)
		}
		entries = append(entries, Entry{Digest: Digest(strings.ToLower(digest)), Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checksum file: %w", err)
	}
	return entries, nil
}

// Lookup returns the digest recorded for filename. A bare file name also
// matches entries recorded with a directory part.
func Lookup(entries []Entry, filename string) (Digest, error) {
	for _, e := range entries {
		if e.Name == filename || filepath.Base(e.Name) == filename {
			return e.Digest, nil
		}
	}
	return "", fmt.Errorf("checksum for %q not found", filename)
}

// UpdateSumsFile records files in dir/SHA256SUMS, replacing the entries
// of files already listed and keeping the others. Names are relative to
// dir.
func UpdateSumsFile(dir string, files []string) (string, error) {
	sumsPath := filepath.Join(dir, SumsFileName)

	var entries []Entry
	existing, err := os.ReadFile(sumsPath)
	switch {
	case err == nil:
		if entries, err = ParseGNU(existing); err != nil {
			return "", fmt.Errorf("%s: %w", sumsPath, err)
		}
	case !os.IsNotExist(err):
		return "", fmt.Errorf("failed to read %s: %w", sumsPath, err)
	}

	for _, f := range files {
		name, err := filepath.Rel(dir, f)
		if err != nil {
			return "", fmt.Errorf("%s is outside %s: %w", f, dir, err)
		}
		name = filepath.ToSlash(name)
		d, err := Calculate(f, AlgorithmSHA256)
		if err != nil {
			return "", err
		}
		entries = slices.DeleteFunc(entries, func(e Entry) bool { return e.Name == name })
		entries = append(entries, Entry{Digest: d, Name: name})
	}

	var buf bytes.Buffer
	if err := WriteGNU(&buf, entries); err != nil {
		return "", err
	}
	if err := os.WriteFile(sumsPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", sumsPath, err)
	}
	return sumsPath, nil
}

// VerifySumsFile checks every file listed in dir/SHA256SUMS.
func VerifySumsFile(dir string) ([]Entry, error) {
	sumsPath := filepath.Join(dir, SumsFileName)
	content, err := os.ReadFile(sumsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sumsPath, err)
	}
	entries, err := ParseGNU(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sumsPath, err)
	}
	for _, e := range entries {
		if err := Verify(filepath.Join(dir, filepath.FromSlash(e.Name)), e.Digest); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
