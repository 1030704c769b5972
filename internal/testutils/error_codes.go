// SPDX-License-Identifier: Apache-2.0

package testutils

const (
	CheckViolationErrorCode string = "check_violation"
	UndefinedTableErrorCode string = "undefined_table"
)
