package rsync

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
)

// Result is the captured outcome of a command run to completion.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the command exited with status zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Process is a running command with both output streams piped.
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader
	// Wait blocks until exit. A non-zero exit is reported through the code,
	// not the error.
	Wait() (int, error)
}

// Runner spawns external commands. Errors are returned only when the command
// could not be started or waited on; exit statuses are data.
type Runner interface {
	Status(program string, args []string) (int, error)
	Output(program string, args []string) (Result, error)
	Start(program string, args []string) (Process, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), nil
	}
	return -1, err
}

// Status runs program attached to the current terminal so ssh can prompt.
func (ExecRunner) Status(program string, args []string) (int, error) {
	log.Printf("exec: %s %s", program, strings.Join(args, " "))
	cmd := exec.Command(program, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return exitCode(cmd.Run())
}

func (ExecRunner) Output(program string, args []string) (Result, error) {
	log.Printf("exec (capture): %s %s", program, strings.Join(args, " "))
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(program, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	code, err := exitCode(cmd.Run())
	if err != nil {
		return Result{}, err
	}
	return Result{ExitCode: code, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}

// Start spawns program with stdout and stderr connected to pipes owned by
// the caller. Unlike cmd.StdoutPipe, Wait does not close the read ends, so
// readers may still be draining buffered output after the process exits.
func (ExecRunner) Start(program string, args []string) (Process, error) {
	log.Printf("exec (stream): %s %s", program, strings.Join(args, " "))
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	cmd := exec.Command(program, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = outW
	cmd.Stderr = errW
	startErr := cmd.Start()
	// the child holds its own copies of the write ends
	outW.Close()
	errW.Close()
	if startErr != nil {
		outR.Close()
		errR.Close()
		return nil, startErr
	}
	return &execProcess{cmd: cmd, stdout: outR, stderr: errR}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout *os.File
	stderr *os.File
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }

func (p *execProcess) Wait() (int, error) {
	return exitCode(p.cmd.Wait())
}

// Close releases the read ends once both readers are done.
func (p *execProcess) Close() error {
	return errors.Join(p.stdout.Close(), p.stderr.Close())
}
