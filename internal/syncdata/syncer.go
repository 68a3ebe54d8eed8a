package syncdata

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"

	"remote-sync/internal/config"
	"remote-sync/internal/events"
	"remote-sync/internal/pathmap"
	"remote-sync/internal/rsync"
	"remote-sync/internal/tree"
	"remote-sync/internal/util"
)

const transferredPrefix = "Total transferred file size:"

// Request is one sync as asked for on the command line.
type Request struct {
	Path    string
	Host    string
	Pull    bool
	DryRun  bool
	NoPerms bool
}

// DryRunSummary is what a dry run reports instead of transferring.
type DryRunSummary struct {
	Tree string
	// TransferredLine is rsync's estimated size line; empty when absent.
	TransferredLine string
	Entries         int
}

// Syncer drives rsync between a local path and the same path under the
// remote home directory.
type Syncer struct {
	Runner rsync.Runner
	Config *config.Config
	Out    *util.SafePrinter
	Bus    EventBus.Bus
	RunID  string
	Home   string
	Cwd    string

	// NewDisplay builds the live view for a real run.
	NewDisplay func(label string) rsync.Display

	stat     func(string) (fs.FileInfo, error)
	mkdirAll func(string, fs.FileMode) error
	now      func() time.Time
}

// New returns a Syncer using the real filesystem and clock.
func New(runner rsync.Runner, cfg *config.Config, out *util.SafePrinter, home, cwd string) *Syncer {
	return &Syncer{
		Runner:   runner,
		Config:   cfg,
		Out:      out,
		Bus:      events.GlobalBus,
		Home:     home,
		Cwd:      cwd,
		stat:     os.Stat,
		mkdirAll: os.MkdirAll,
		now:      time.Now,
	}
}

func (s *Syncer) publish(topic string, t events.Transfer) {
	if s.Bus != nil {
		s.Bus.Publish(topic, t)
	}
}

// Run resolves the request, prepares the destination parent and then
// either previews or performs the transfer.
func (s *Syncer) Run(req Request) error {
	if req.Host == "" {
		return errors.New("no host given")
	}
	local := pathmap.Resolve(req.Path, s.Cwd, s.Home)
	remote := pathmap.ToRemote(local, s.Home)
	opts := s.Config.RsyncOptions(req.NoPerms)

	t := events.Transfer{
		RunID:      s.RunID,
		Host:       req.Host,
		LocalPath:  local,
		RemotePath: remote,
		Pull:       req.Pull,
		DryRun:     req.DryRun,
	}
	log.Printf("sync %s: local=%s remote=%s:%s pull=%v dry=%v", s.RunID, local, req.Host, remote, req.Pull, req.DryRun)
	s.publish(events.EventTransferStarted, t)

	if err := s.run(req, local, remote, opts); err != nil {
		t.Err = err
		s.publish(events.EventTransferFailed, t)
		return err
	}
	s.publish(events.EventTransferCompleted, t)
	return nil
}

func (s *Syncer) run(req Request, local, remote string, opts rsync.Options) error {
	target := pathmap.Resolved{Path: local}
	if req.Pull {
		target.IsFile = s.RemoteIsFile(req.Host, remote, opts)
		parent := pathmap.LocalParent(local)
		if err := s.mkdirAll(parent, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", parent, err)
		}
	} else {
		target.IsFile = s.localIsFile(local)
		if err := s.EnsureRemoteParent(req.Host, pathmap.RemoteParent(remote), opts); err != nil {
			return err
		}
	}

	if req.DryRun {
		sum, err := s.DryRun(req.Host, target, remote, req.Pull, opts)
		if err != nil {
			return err
		}
		s.printDryRun(sum)
		return nil
	}

	stats, err := s.RealRun(req.Host, target, remote, req.Pull, opts)
	if err != nil {
		return err
	}
	s.Out.Print(stats.Summary())
	return nil
}

func (s *Syncer) localIsFile(p string) bool {
	fi, err := s.stat(p)
	return err == nil && fi.Mode().IsRegular()
}

// RemoteIsFile asks host whether remote is a regular file. Any failure,
// including one to reach the host, counts as "not a file".
func (s *Syncer) RemoteIsFile(host, remote string, opts rsync.Options) bool {
	args := rsync.SSHCommand(opts, host, "test -f "+pathmap.RemoteShellPath(remote))
	code, err := s.Runner.Status(opts.SSHProgram(), args)
	if err != nil {
		log.Printf("remote probe on %s failed, assuming directory: %v", host, err)
		return false
	}
	return code == 0
}

// EnsureRemoteParent creates dir and its parents on host.
func (s *Syncer) EnsureRemoteParent(host, dir string, opts rsync.Options) error {
	args := rsync.SSHCommand(opts, host, "mkdir -p "+pathmap.RemoteShellPath(dir))
	code, err := s.Runner.Status(opts.SSHProgram(), args)
	if err != nil {
		return fmt.Errorf("failed to run ssh mkdir -p: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("failed to create remote directory %s (exit %d)", dir, code)
	}
	return nil
}

func (s *Syncer) invocation(host string, target pathmap.Resolved, remote string, pull, dryRun bool, opts rsync.Options) []string {
	src, dst := rsync.Endpoints(host, target.Path, remote, target.IsFile, pull)
	return append(rsync.BuildArgs(opts, dryRun), src, dst)
}

// DryRun runs rsync in preview mode and renders what would change.
func (s *Syncer) DryRun(host string, target pathmap.Resolved, remote string, pull bool, opts rsync.Options) (DryRunSummary, error) {
	args := s.invocation(host, target, remote, pull, true, opts)
	res, err := s.Runner.Output(s.Config.RsyncBin, args)
	if err != nil {
		return DryRunSummary{}, fmt.Errorf("failed to run rsync --dry-run: %w", err)
	}
	if !res.Success() {
		log.Printf("rsync dry run exit %d: %s", res.ExitCode, strings.TrimSpace(string(res.Stderr)))
		return DryRunSummary{}, fmt.Errorf("rsync dry run failed (exit %d)", res.ExitCode)
	}

	records := tree.ParseItemized(string(res.Stdout))
	sum := DryRunSummary{
		Tree:    tree.Render(tree.Build(records)),
		Entries: len(records),
	}
	for _, line := range strings.Split(string(res.Stderr), "\n") {
		if strings.HasPrefix(line, transferredPrefix) {
			sum.TransferredLine = strings.TrimSpace(line)
			break
		}
	}
	return sum, nil
}

func (s *Syncer) printDryRun(sum DryRunSummary) {
	if sum.Tree == "" {
		s.Out.Println("(no changes)")
	} else {
		s.Out.Println(sum.Tree)
	}
	if sum.TransferredLine != "" {
		s.Out.Println(sum.TransferredLine)
	}
	s.Out.Printf("%d entries\n", sum.Entries)
}

// RealRun performs the transfer while streaming progress to the display.
// Both output readers are drained before the stats are read, and the display
// is finished before any failure is returned.
func (s *Syncer) RealRun(host string, target pathmap.Resolved, remote string, pull bool, opts rsync.Options) (rsync.RunStats, error) {
	args := s.invocation(host, target, remote, pull, false, opts)
	proc, err := s.Runner.Start(s.Config.RsyncBin, args)
	if err != nil {
		return rsync.RunStats{}, fmt.Errorf("failed to spawn rsync: %w", err)
	}

	display := s.newDisplay()
	display.SetCurrent("Waiting for files...")
	interp := rsync.NewInterpreter(display)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		interp.ConsumeProgress(proc.Stdout())
	}()
	go func() {
		defer wg.Done()
		interp.ConsumeDiagnostics(proc.Stderr())
	}()

	start := s.now()
	code, waitErr := proc.Wait()
	elapsed := s.now().Sub(start)

	wg.Wait()
	if c, ok := proc.(io.Closer); ok {
		_ = c.Close()
	}
	display.Finish("Done")

	if waitErr != nil {
		return rsync.RunStats{}, fmt.Errorf("failed to wait on rsync: %w", waitErr)
	}
	if code != 0 {
		return rsync.RunStats{}, fmt.Errorf("rsync failed (exit %d)", code)
	}
	return rsync.ParseRunStats(interp.Stats(), elapsed), nil
}

func (s *Syncer) newDisplay() rsync.Display {
	if s.NewDisplay != nil {
		return s.NewDisplay("Overall")
	}
	return nopDisplay{}
}

type nopDisplay struct{}

func (nopDisplay) SetCurrent(string) {}
func (nopDisplay) SetPercent(int)    {}
func (nopDisplay) Finish(string)     {}
