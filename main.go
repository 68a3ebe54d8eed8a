package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"remote-sync/cmd"
	"remote-sync/internal/events"
	"remote-sync/internal/util"

	"golang.org/x/term"
)

const logDir = ".remote-sync/logs"

// openLog redirects the standard logger to an append-only file under home.
func openLog() (*os.File, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, logDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return os.OpenFile(filepath.Join(dir, "remote-sync.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func main() {
	f, err := openLog()
	if err != nil {
		// logging is best effort; never let it block a transfer
		log.SetOutput(io.Discard)
	} else {
		defer f.Close()
		log.SetOutput(f)
	}
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetPrefix("[" + cmd.RunID()[:8] + "] ")
	log.Printf("start: %v", os.Args)

	// Capture original terminal state (if stdin is a TTY) so we can restore on forced exit.
	var origState *term.State
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if st, err := term.GetState(int(os.Stdin.Fd())); err == nil {
			origState = st
		}
	}
	restore := func() {
		if origState != nil {
			_ = term.Restore(int(os.Stdin.Fd()), origState)
		}
	}

	ctx := context.Background()

	var once sync.Once
	shutdown := make(chan struct{})
	events.GlobalBus.Subscribe(events.EventShutdownRequested, func(reason string) {
		log.Printf("shutdown requested: %s", reason)
		once.Do(func() { close(shutdown) })
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		if s, ok := <-sigCh; ok {
			events.GlobalBus.Publish(events.EventShutdownRequested, s.String())
		}
	}()

	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	var runErr error
	select {
	case runErr = <-done:
	case <-shutdown:
		util.Default.ClearLine()
		// rsync and ssh got the same interrupt from the terminal; give them
		// a moment to exit and report
		select {
		case runErr = <-done:
		case <-time.After(5 * time.Second):
			log.Println("timeout waiting for command after interrupt, forcing exit")
			restore()
			os.Exit(130)
		}
	}

	restore()
	if runErr != nil {
		log.Printf("exit: %v", runErr)
		util.Default.Printf("❌ %v\n", runErr)
		os.Exit(1)
	}
	log.Println("exit: ok")
}
