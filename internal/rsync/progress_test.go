package rsync

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDisplay keeps every update so tests can assert on the sequence.
type recordingDisplay struct {
	mu       sync.Mutex
	current  []string
	percents []int
	finished string
}

func (d *recordingDisplay) SetCurrent(item string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = append(d.current, item)
}

func (d *recordingDisplay) SetPercent(pct int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.percents = append(d.percents, pct)
}

func (d *recordingDisplay) Finish(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finished = message
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		line string
		want int
		ok   bool
	}{
		{"      1,234,567  42%  1.23MB/s    0:00:05", 42, true},
		{"0% 10% 20%", 0, true},
		{"abc% 7%", 7, true},
		{"100%", 100, true},
		{"250%", 100, true},
		{"progress -3%", 0, true},
		{"no percent here", 0, false},
		{"12.5% done", 0, false},
		{"50%done", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePercent(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestConsumeProgressSkipsBlankLines(t *testing.T) {
	d := &recordingDisplay{}
	in := NewInterpreter(d)
	in.ConsumeProgress(strings.NewReader("a.txt\n\n   \ndir/b.txt\n"))
	assert.Equal(t, []string{"a.txt", "dir/b.txt"}, d.current)
}

func TestConsumeDiagnostics(t *testing.T) {
	d := &recordingDisplay{}
	in := NewInterpreter(d)
	input := "          1,024  10%  1.00MB/s    0:00:00\r" +
		"          9,999  55%  1.00MB/s    0:00:01\r\n" +
		"Number of files: 3\n" +
		"sent 2,327 bytes  received 274 bytes  1,234.00 bytes/sec\n" +
		"total size is 706,617,380  speedup is 1.00\n"
	in.ConsumeDiagnostics(strings.NewReader(input))

	assert.Equal(t, []int{10, 55}, d.percents)
	assert.Equal(t, []string{
		"sent 2,327 bytes  received 274 bytes  1,234.00 bytes/sec",
		"total size is 706,617,380  speedup is 1.00",
	}, in.Stats())
}

func TestConsumeBothStreamsConcurrently(t *testing.T) {
	d := &recordingDisplay{}
	in := NewInterpreter(d)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		in.ConsumeProgress(strings.NewReader(strings.Repeat("file\n", 200)))
	}()
	go func() {
		defer wg.Done()
		in.ConsumeDiagnostics(strings.NewReader(strings.Repeat("sent 1 bytes  received 1 bytes\n", 200)))
	}()
	wg.Wait()

	assert.Len(t, d.current, 200)
	assert.Len(t, in.Stats(), 200)
}

func TestStatsReturnsCopy(t *testing.T) {
	in := NewInterpreter(&recordingDisplay{})
	in.ConsumeDiagnostics(strings.NewReader("sent 1 bytes  received 2 bytes\n"))
	got := in.Stats()
	got[0] = "mutated"
	assert.Equal(t, "sent 1 bytes  received 2 bytes", in.Stats()[0])
}

func TestParseRunStats(t *testing.T) {
	lines := []string{
		"sent 2,327 bytes  received 274 bytes  1,234.00 bytes/sec",
		"total size is 706,617,380  speedup is 1.00",
	}
	st := ParseRunStats(lines, 1500*time.Millisecond)
	require.NotNil(t, st.Sent)
	require.NotNil(t, st.Total)
	assert.Equal(t, uint64(2327), *st.Sent)
	assert.Equal(t, uint64(706617380), *st.Total)

	summary := st.Summary()
	assert.Contains(t, summary, "  sent: 2.27 KB\n")
	assert.Contains(t, summary, "  total size: 673.88 MB\n")
	assert.Contains(t, summary, "  duration: 1.5s\n")
}

func TestParseRunStatsMissingFields(t *testing.T) {
	st := ParseRunStats([]string{"sent garbage bytes"}, time.Second)
	assert.Nil(t, st.Sent)
	assert.Nil(t, st.Total)
	assert.Equal(t, "Summary:\n  duration: 1s\n", st.Summary())
}

func TestParseRunStatsTotalWithoutTrailer(t *testing.T) {
	st := ParseRunStats([]string{"total size is 1,048,576"}, 0)
	require.NotNil(t, st.Total)
	assert.Equal(t, uint64(1048576), *st.Total)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1023 B", FormatSize(1023))
	assert.Equal(t, "1.50 KB", FormatSize(1536))
	assert.Equal(t, "1.00 MB", FormatSize(1<<20))
	assert.Equal(t, "1.00 GB", FormatSize(1073741824))
	assert.Equal(t, "2048.00 GB", FormatSize(1<<41))
}
