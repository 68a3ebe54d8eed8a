package rsync

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Display is the live view updated while a transfer runs. SetCurrent is only
// called from the progress reader and SetPercent only from the diagnostics
// reader.
type Display interface {
	SetCurrent(item string)
	SetPercent(pct int)
	Finish(message string)
}

const (
	sentPrefix      = "sent "
	totalSizePrefix = "total size is "
)

// Interpreter consumes the two output streams of a running rsync.
type Interpreter struct {
	display Display

	mu    sync.Mutex
	stats []string
}

func NewInterpreter(d Display) *Interpreter {
	return &Interpreter{display: d}
}

// ConsumeProgress reads the per-item stream until EOF, showing each non-empty
// line as the current item.
func (in *Interpreter) ConsumeProgress(r io.Reader) {
	sc := newLineScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		in.display.SetCurrent(line)
	}
}

// ConsumeDiagnostics reads the statistics stream until EOF, moving the overall
// indicator on percentage tokens and keeping the summary lines.
func (in *Interpreter) ConsumeDiagnostics(r io.Reader) {
	sc := newLineScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if pct, ok := ParsePercent(line); ok {
			in.display.SetPercent(pct)
		}
		if strings.HasPrefix(line, sentPrefix) || strings.HasPrefix(line, totalSizePrefix) {
			in.mu.Lock()
			in.stats = append(in.stats, line)
			in.mu.Unlock()
		}
	}
}

// Stats returns a copy of the collected summary lines.
func (in *Interpreter) Stats() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]string, len(in.stats))
	copy(out, in.stats)
	return out
}

// ParsePercent returns the value of the first whitespace-delimited token of
// the form "<int>%", clamped to 0..100.
func ParsePercent(line string) (int, bool) {
	if !strings.Contains(line, "%") {
		return 0, false
	}
	for _, tok := range strings.Fields(line) {
		num, ok := strings.CutSuffix(tok, "%")
		if !ok {
			continue
		}
		v, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		return min(max(v, 0), 100), true
	}
	return 0, false
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(scanLinesOrCR)
	return sc
}

// scanLinesOrCR is bufio.ScanLines that also breaks on a bare '\r', which
// rsync uses to redraw its progress line in place. A "\r\n" pair yields an
// extra empty line; both consumers ignore empty lines.
func scanLinesOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
