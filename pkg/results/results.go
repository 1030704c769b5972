// SPDX-License-Identifier: Apache-2.0

package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/mod/semver"
	"sigs.k8s.io/yaml"

	"github.com/xataio/sandbench/pkg/measurement"
)

// DefaultPath is the results file used when none is configured.
const DefaultPath = "sandbench_results.yml"

// DevelopmentVersion marks builds without a release version. Files written
// by or read with a development build skip the version check.
const DevelopmentVersion = "development"

// File is the on-disk layout of a results file.
type File struct {
	Version string              `json:"version"`
	Benches measurement.Results `json:"benches"`
}

// Read loads the results stored at path. A missing file is an empty set of
// results. version is the version of the running tool; files written by a
// newer version are rejected with a VersionError.
func Read(path, version string) (measurement.Results, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return measurement.Results{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}

	f, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	if err := CheckVersion(f.Version, version); err != nil {
		return nil, err
	}
	return f.Benches, nil
}

// Parse validates and decodes the contents of a results file. path is only
// used in error messages.
func Parse(path string, data []byte) (*File, error) {
	if err := Validate(data); err != nil {
		return nil, SchemaValidationError{Path: path, Err: err}
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding results file: %w", err)
	}
	if f.Benches == nil {
		f.Benches = measurement.Results{}
	}
	return &f, nil
}

// Write stores results at path, tagged with the version of the running
// tool.
func Write(path, version string, results measurement.Results) error {
	if results == nil {
		results = measurement.Results{}
	}

	data, err := yaml.Marshal(File{Version: version, Benches: results})
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results file: %w", err)
	}
	return nil
}

// CheckVersion returns a VersionError if fileVersion is newer than
// version. Development and unparseable versions are not checked.
func CheckVersion(fileVersion, version string) error {
	if fileVersion == DevelopmentVersion || version == DevelopmentVersion {
		return nil
	}

	fv, v := ensureVPrefix(fileVersion), ensureVPrefix(version)
	if !semver.IsValid(fv) || !semver.IsValid(v) {
		return nil
	}

	if semver.Compare(semver.Canonical(fv), semver.Canonical(v)) > 0 {
		return VersionError{FileVersion: fileVersion, Version: version}
	}
	return nil
}

// Ensure that the given version string starts with 'v' as required by
// golang.org/x/mod/semver
func ensureVPrefix(version string) string {
	if len(version) > 0 && version[0] != 'v' {
		return "v" + version
	}
	return version
}
