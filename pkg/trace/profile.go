// SPDX-License-Identifier: Apache-2.0

package trace

// Options controls how a trace buffer is turned into a profile.
type Options struct {
	// Upper bound on the number of nodes in the profile
	MaxNodes int

	// Upper bound on the number of entries accepted from the buffer
	MaxEntries int

	// Merge calls to the same function under each node
	Aggregate bool
}

// DefaultOptions returns options sized for the default payload ceiling.
func DefaultOptions() Options {
	return Options{
		MaxNodes:   MaxNodesForPayload(DefaultPayloadCeiling),
		MaxEntries: DefaultMaxEntries,
	}
}

// Profile is the call tree reconstructed from one trace.
type Profile struct {
	Root *Node `json:"root"`

	// Whether subtrees were cut to fit the node budget
	Truncated bool `json:"truncated"`

	// Whether sibling calls were merged by function
	Aggregated bool `json:"aggregated"`
}

// Reconstruct decodes a trace buffer and rebuilds the call tree of the
// traced benchmark. benchInstructions is the benchmark's instruction count
// measured without tracing and is used to remove the tracing overhead.
func Reconstruct(buf []byte, benchInstructions uint64, opts Options) (*Profile, error) {
	entries, err := Decode(buf, opts.MaxEntries)
	if err != nil {
		return nil, err
	}
	return FromEntries(entries, benchInstructions, opts)
}

// FromEntries rebuilds the call tree from already decoded entries.
func FromEntries(entries []Entry, benchInstructions uint64, opts Options) (*Profile, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTrace
	}

	corrected := CorrectOverhead(entries, benchInstructions)
	total := max(int64(benchInstructions), corrected[len(corrected)-1].Counter)

	root, err := Build(bracket(corrected, total))
	if err != nil {
		return nil, err
	}

	p := &Profile{Root: root}
	if opts.Aggregate {
		p.Root = Aggregate(p.Root)
		p.Aggregated = true
	}

	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = MaxNodesForPayload(DefaultPayloadCeiling)
	}
	p.Root, p.Truncated = Truncate(p.Root, maxNodes)

	return p, nil
}

// Lines returns the profile in stack-collapse format.
func (p *Profile) Lines(names NameTable) []string {
	return Collapse(p.Root, names)
}
