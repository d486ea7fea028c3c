package homeplug

import (
	"fmt"
	"strings"
)

// FormatCompact returns one line per device suitable for terminal display
func FormatCompact(devices []DeviceInfo) string {
	if len(devices) == 0 {
		return "No powerline devices registered.\n"
	}

	var b strings.Builder
	for _, d := range devices {
		b.WriteString(d.Summary())
		if d.UpdateAvailable {
			b.WriteString(" (update available)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatRecord returns a raw device entry as aligned "key: value" lines in
// key order
func FormatRecord(r Record) string {
	keys := r.Keys()
	width := 0
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%-*s %s\n", width+1, k+":", r[k]))
	}
	return b.String()
}

// YesNo renders a flag for tables
func YesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
