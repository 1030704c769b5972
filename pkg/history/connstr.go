// SPDX-License-Identifier: Apache-2.0

package history

import (
	"fmt"
	"net/url"
	"strings"
)

// withSearchPath returns the Postgres URL connStr with the search_path
// option set to schema, so that every session of the store resolves
// unqualified names in the history schema.
func withSearchPath(connStr, schema string) (string, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	if schema == "" {
		return connStr, nil
	}

	q := u.Query()
	q.Set("options", fmt.Sprintf("-c search_path=%s", schema))

	// Spaces inside `options` must be encoded as %20, not '+'.
	u.RawQuery = strings.ReplaceAll(q.Encode(), "+", "%20")
	return u.String(), nil
}
