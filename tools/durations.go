package tools

import (
	"fmt"
	"time"
)

// describeDuration renders d the way timeout diagnostics read: "60 seconds",
// "2 minutes".
func describeDuration(d time.Duration) string {
	if d >= 2*time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}
	if d == time.Second {
		return "1 second"
	}
	return fmt.Sprintf("%g seconds", d.Seconds())
}
