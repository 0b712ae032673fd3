// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import "strings"

// CoalesceString returns the first value that is not blank, trimmed. It picks a
// setting from flag, environment and default in that order; a variable set to
// whitespace counts as unset.
func CoalesceString(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
