// SPDX-License-Identifier: Apache-2.0

package cmd

import "errors"

var (
	errHistoryNotInitialized = errors.New("history store is not initialized, run 'sandbench history init' to initialize")
	errNoRuntime             = errors.New("no runtime command configured, set --runtime or SANDBENCH_RUNTIME_CMD")
	errRegression            = errors.New("performance regression detected")
)
