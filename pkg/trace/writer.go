// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

type Format int

const (
	InvalidFormat Format = iota
	FoldedFormat
	JSONFormat
	YAMLFormat
)

var ErrInvalidFormat = errors.New("invalid profile format")

// ParseFormat returns the format with the given name: folded, json or
// yaml.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "folded", "":
		return FoldedFormat, nil
	case "json":
		return JSONFormat, nil
	case "yaml", "yml":
		return YAMLFormat, nil
	}
	return InvalidFormat, fmt.Errorf("%w: %q", ErrInvalidFormat, name)
}

// Extension returns the file extension of the format
func (f Format) Extension() string {
	switch f {
	case FoldedFormat:
		return "folded"
	case JSONFormat:
		return "json"
	case YAMLFormat:
		return "yaml"
	}
	return ""
}

// Writer writes profiles to the configured io.Writer as collapsed stacks,
// JSON or YAML.
type Writer struct {
	writer io.Writer
	format Format
	names  NameTable
}

// NewWriter creates a new Writer. names is only used by the folded format.
func NewWriter(w io.Writer, f Format, names NameTable) *Writer {
	return &Writer{
		writer: w,
		format: f,
		names:  names,
	}
}

func (w *Writer) Write(p *Profile) error {
	switch w.format {
	case FoldedFormat:
		return WriteCollapsed(w.writer, p.Root, w.names)
	case YAMLFormat:
		yml, err := yaml.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode yaml profile: %w", err)
		}
		_, err = w.writer.Write(yml)
		return err
	case JSONFormat:
		enc := json.NewEncoder(w.writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode json profile: %w", err)
		}
		return nil
	}
	return ErrInvalidFormat
}
