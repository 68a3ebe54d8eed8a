package util

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafePrinterWrites(t *testing.T) {
	var buf bytes.Buffer
	p := NewSafePrinter(&buf)
	p.Print("a", "b")
	p.Printf(" %d\n", 1)
	p.Println("line")
	p.ClearLine()
	assert.Equal(t, "ab 1\nline\n\r\x1b[K", buf.String())
	assert.Same(t, &buf, p.Writer())
}

func TestSafePrinterConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	p := NewSafePrinter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.Println("0123456789")
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 400)
	for _, l := range lines {
		assert.Equal(t, "0123456789", l)
	}
}
