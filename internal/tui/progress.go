package tui

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"remote-sync/internal/rsync"
	"remote-sync/internal/util"
)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd")).Bold(true)
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f8f8f2"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#50fa7b")).Bold(true)
)

type (
	currentMsg string
	percentMsg int
	finishMsg  string
)

type progressModel struct {
	label   string
	current string
	percent int
	final   string
	width   int

	bar  progress.Model
	spin spinner.Model
}

func newProgressModel(label string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = labelStyle
	return progressModel{
		label: label,
		width: 80,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spin:  s,
	}
}

func (m progressModel) Init() tea.Cmd { return m.spin.Tick }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case currentMsg:
		m.current = string(msg)
		return m, nil
	case percentMsg:
		m.percent = int(msg)
		return m, nil
	case finishMsg:
		m.final = string(msg)
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(40, max(10, msg.Width-len(m.label)-8))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	if m.final != "" {
		b.WriteString(doneStyle.Render("✔ " + m.final))
	} else {
		b.WriteString(m.spin.View())
		b.WriteString(currentStyle.Render(truncate(m.current, m.width-4)))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(m.label))
	b.WriteString(" ")
	b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// ProgressView renders transfer progress with a bubbletea program: a
// spinner next to the current item and an overall bar. It is safe to
// update from several goroutines.
type ProgressView struct {
	prog *tea.Program
	done chan struct{}
	once sync.Once
}

// NewProgressView starts the program. Keyboard input is not read so that
// the terminal keeps delivering signals.
func NewProgressView(label string, opts ...tea.ProgramOption) *ProgressView {
	v := &ProgressView{done: make(chan struct{})}
	opts = append([]tea.ProgramOption{tea.WithInput(nil)}, opts...)
	v.prog = tea.NewProgram(newProgressModel(label), opts...)
	go func() {
		defer close(v.done)
		if _, err := v.prog.Run(); err != nil {
			log.Printf("progress view stopped: %v", err)
		}
	}()
	return v
}

func (v *ProgressView) SetCurrent(item string) { v.prog.Send(currentMsg(item)) }

func (v *ProgressView) SetPercent(pct int) { v.prog.Send(percentMsg(pct)) }

// Finish freezes the view with message and waits for the program to exit.
func (v *ProgressView) Finish(message string) {
	v.once.Do(func() {
		v.prog.Send(finishMsg(message))
		<-v.done
	})
}

// PlainProgress prints progress as plain lines for non-terminal output.
// Percent updates are shown only when they cross a multiple of ten.
type PlainProgress struct {
	out   *util.SafePrinter
	label string

	mu   sync.Mutex
	last int
}

func NewPlainProgress(out *util.SafePrinter, label string) *PlainProgress {
	return &PlainProgress{out: out, label: label, last: -1}
}

func (p *PlainProgress) SetCurrent(item string) {
	p.out.Println("  " + item)
}

func (p *PlainProgress) SetPercent(pct int) {
	p.mu.Lock()
	step := pct / 10 * 10
	if step == p.last {
		p.mu.Unlock()
		return
	}
	p.last = step
	p.mu.Unlock()
	p.out.Printf("%s %d%%\n", p.label, step)
}

func (p *PlainProgress) Finish(message string) {
	p.out.Println(message)
}

// NewDisplay picks the live view when f is a terminal and plain lines
// otherwise.
func NewDisplay(f *os.File, out *util.SafePrinter, label string) rsync.Display {
	if term.IsTerminal(int(f.Fd())) {
		return NewProgressView(label, tea.WithOutput(f))
	}
	return NewPlainProgress(out, label)
}

var _ rsync.Display = (*ProgressView)(nil)
var _ rsync.Display = (*PlainProgress)(nil)

// Describe formats the direction header printed before a transfer.
func Describe(pull bool, host string) string {
	if pull {
		return fmt.Sprintf("Pull ← %s", host)
	}
	return fmt.Sprintf("Push → %s", host)
}
