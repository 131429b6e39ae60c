package report

import (
	"fmt"
)

// formatFloat formats a float64 value for tabular output with exactly 2
// decimal places, so values like 13.4 appear as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value for tabular output
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
