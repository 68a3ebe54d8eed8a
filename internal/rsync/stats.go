package rsync

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RunStats is what could be recovered from rsync's summary lines. Absent
// values stay nil and are left out of the summary.
type RunStats struct {
	Sent     *uint64
	Total    *uint64
	Duration time.Duration
}

// ParseRunStats scans lines such as
//
//	sent 2,327 bytes  received 274 bytes  1,234.00 bytes/sec
//	total size is 706,617,380  speedup is 1.00
//
// The last occurrence of each wins.
func ParseRunStats(lines []string, d time.Duration) RunStats {
	st := RunStats{Duration: d}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, sentPrefix); ok {
			if end := strings.Index(rest, " bytes"); end >= 0 {
				if v, ok := ParseBytes(rest[:end]); ok {
					st.Sent = &v
				}
			}
		}
		if rest, ok := strings.CutPrefix(line, totalSizePrefix); ok {
			if end := strings.Index(rest, "  "); end >= 0 {
				rest = rest[:end]
			}
			if v, ok := ParseBytes(rest); ok {
				st.Total = &v
			}
		}
	}
	return st
}

// ParseBytes parses an unsigned count written with optional thousands
// separators ("706,617,380").
func ParseBytes(s string) (uint64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

const (
	kb = 1024
	mb = kb * 1024
	gb = mb * 1024
)

// FormatSize renders a byte count with 1024-based units.
func FormatSize(bytes uint64) string {
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Summary renders the end-of-run report.
func (s RunStats) Summary() string {
	var b strings.Builder
	b.WriteString("Summary:\n")
	if s.Sent != nil {
		fmt.Fprintf(&b, "  sent: %s\n", FormatSize(*s.Sent))
	}
	if s.Total != nil {
		fmt.Fprintf(&b, "  total size: %s\n", FormatSize(*s.Total))
	}
	fmt.Fprintf(&b, "  duration: %s\n", FormatDuration(s.Duration))
	return b.String()
}

// FormatDuration rounds to hundredths of the most significant unit.
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.String()
	}
}
