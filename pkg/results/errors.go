// SPDX-License-Identifier: Apache-2.0

package results

import "fmt"

// VersionError is returned when a results file was written by a newer
// version than the running one.
type VersionError struct {
	FileVersion string
	Version     string
}

func (e VersionError) Error() string {
	return fmt.Sprintf("results file was written by version %s, which is newer than this version (%s); upgrade to read it", e.FileVersion, e.Version)
}

// SchemaValidationError is returned when a results file does not match the
// results file schema.
type SchemaValidationError struct {
	Path string
	Err  error
}

func (e SchemaValidationError) Error() string {
	return fmt.Sprintf("results file %q is invalid: %s", e.Path, e.Err)
}

func (e SchemaValidationError) Unwrap() error {
	return e.Err
}
