// Package units provides shared constants, validation and conversions for
// the display units accepted by the CLI and API. The model always works in
// SI; these helpers convert at the edges.
package units

import "strings"

func isOneOf(unit string, valid []string) bool {
	for _, v := range valid {
		if unit == v {
			return true
		}
	}
	return false
}

func joinUnits(valid []string) string {
	return strings.Join(valid, ", ")
}
