// SPDX-License-Identifier: Apache-2.0

package flags

import (
	"github.com/spf13/viper"
)

func RuntimeCommand() string {
	return viper.GetString("RUNTIME_CMD")
}

func ResultsPath() string {
	return viper.GetString("RESULTS_PATH")
}

func NoiseThreshold() float64 {
	return viper.GetFloat64("NOISE_THRESHOLD")
}

func PostgresURL() string {
	return viper.GetString("POSTGRES_URL")
}

func HistorySchema() string {
	return viper.GetString("HISTORY_SCHEMA")
}

func MaxTraceNodes() int {
	return viper.GetInt("MAX_TRACE_NODES")
}

func ReportRemoved() bool {
	return viper.GetBool("REPORT_REMOVED")
}
