// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// NameTable maps function ids to display names. It is handed to the
// rendering step explicitly rather than resolved through global state.
type NameTable map[int32]string

// LoadNames reads a YAML (or JSON) mapping of function id to name.
func LoadNames(r io.Reader) (NameTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading name table: %w", err)
	}

	names := NameTable{}
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parsing name table: %w", err)
	}
	return names, nil
}

// WithRoot returns a copy of t naming the implicit root call.
func (t NameTable) WithRoot(name string) NameTable {
	out := make(NameTable, len(t)+1)
	for id, n := range t {
		out[id] = n
	}
	out[SentinelStart] = name
	return out
}

// Name returns the display name of a function id.
func (t NameTable) Name(id int32) string {
	if name, ok := t[id]; ok && name != "" {
		return name
	}
	if id == SentinelStart {
		return "root"
	}
	return fmt.Sprintf("func[%d]", id)
}
