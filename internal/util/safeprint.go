package util

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type SafePrinter struct {
	mu  sync.Mutex
	out io.Writer
}

// Default is the shared SafePrinter used across the application to
// ensure all packages serialize their output to the terminal and avoid
// interleaving between goroutines.
var Default = NewSafePrinter(os.Stdout)

// NewSafePrinter returns a printer writing to w.
func NewSafePrinter(w io.Writer) *SafePrinter {
	return &SafePrinter{out: w}
}

// Writer returns the underlying writer, for libraries that render directly.
func (s *SafePrinter) Writer() io.Writer {
	return s.out
}

func (s *SafePrinter) Print(a ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, a...)
}

func (s *SafePrinter) Printf(format string, a ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, a...)
}

func (s *SafePrinter) Println(a ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, a...)
}

// ClearLine clears the current line and returns the cursor to the beginning.
func (s *SafePrinter) ClearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "\r\x1b[K")
}
