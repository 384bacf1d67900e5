// Package debugtui is an interactive terminal debugger for a
// nescore.Console: a bubbletea program that single-steps the CPU,
// honors breakpoints, and renders register state and a memory-access
// log with lipgloss. It is the one real implementation of
// debug.Hooks in this module; everything else gets debug.NopHooks.
package debugtui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/bdwalton/nescore/debug"
	"github.com/bdwalton/nescore/mos6502"
)

const accessLogSize = 12

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	regStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Hooks implements debug.Hooks for the running console: it pauses
// Step() right before any PC in its breakpoint set, and appends every
// PPU register access to a bounded log the model renders.
type Hooks struct {
	Breakpoints map[uint16]bool
	AccessLog   []debug.Access

	halted  bool
	resumed bool
}

func NewHooks() *Hooks {
	return &Hooks{Breakpoints: map[uint16]bool{}}
}

func (h *Hooks) MayContinue(pc uint16) bool {
	if h.halted {
		return false
	}
	if h.resumed {
		h.resumed = false
		return true
	}
	if h.Breakpoints[pc] {
		h.halted = true
		return false
	}
	return true
}

func (h *Hooks) OnMemoryAccess(a debug.Access) {
	h.AccessLog = append(h.AccessLog, a)
	if len(h.AccessLog) > accessLogSize {
		h.AccessLog = h.AccessLog[len(h.AccessLog)-accessLogSize:]
	}
}

// Resume clears the single halt latched by hitting a breakpoint, so
// the next Step() call runs instead of pausing again at the same PC.
func (h *Hooks) Resume() {
	h.halted = false
	h.resumed = true
}

var _ debug.Hooks = (*Hooks)(nil)

// model is the bubbletea model driving the debugger session.
type model struct {
	console *console
	hooks   *Hooks
	history []string
	status  string
	quitting bool
}

// console adapts a *mos6502.CPU plus a step function into the small
// surface the model needs, keeping this package from importing
// nescore and creating an import cycle risk as the module grows.
type console struct {
	cpu  *mos6502.CPU
	step func() int
}

func newModel(cpu *mos6502.CPU, step func() int, hooks *Hooks) model {
	return model{console: &console{cpu: cpu, step: step}, hooks: hooks}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "s":
		m.step1()
	case "c":
		m.hooks.Resume()
		for i := 0; i < 1_000_000; i++ {
			if m.console.step() == 0 {
				break
			}
		}
		m.status = "ran until breakpoint or halt"
	case "b":
		pc := m.console.cpu.PC
		if m.hooks.Breakpoints[pc] {
			delete(m.hooks.Breakpoints, pc)
			m.status = fmt.Sprintf("cleared breakpoint at %#04x", pc)
		} else {
			m.hooks.Breakpoints[pc] = true
			m.status = fmt.Sprintf("set breakpoint at %#04x", pc)
		}
	}
	return m, nil
}

func (m *model) step1() {
	m.hooks.Resume()
	cycles := m.console.step()
	if cycles == 0 {
		m.status = "halted (breakpoint)"
		return
	}
	m.status = fmt.Sprintf("stepped %d cycles", cycles)
	m.pushHistory()
}

func (m *model) pushHistory() {
	line := spew.Sdump(*m.console.cpu)
	m.history = append(m.history, strings.TrimSpace(line))
	if len(m.history) > 5 {
		m.history = m.history[len(m.history)-5:]
	}
}

func (m model) View() string {
	c := m.console.cpu
	regs := regStyle.Render(fmt.Sprintf(
		"PC=%#04x A=%#02x X=%#02x Y=%#02x SP=%#02x STATUS=%08b",
		c.PC, c.A, c.X, c.Y, c.SP, c.Status))

	var b strings.Builder
	b.WriteString(headerStyle.Render("nescore debugger") + "\n")
	b.WriteString(regs + "\n\n")
	if m.status != "" {
		b.WriteString(pausedStyle.Render(m.status) + "\n\n")
	}
	b.WriteString("accesses:\n")
	for _, a := range m.hooks.AccessLog {
		b.WriteString(fmt.Sprintf("  %s %#04x = %#02x\n", a.Kind, a.Reg, a.Value))
	}
	b.WriteString("\n[s]tep  [c]ontinue  [b]reakpoint  [q]uit\n")
	return boxStyle.Render(b.String())
}

// Run starts the interactive debugger against cpu, driving execution
// by calling step once per "s" keypress (or repeatedly on "c" until a
// breakpoint or a halted CPU). hooks must be the same Hooks instance
// the CPU/PPU were constructed with.
func Run(cpu *mos6502.CPU, step func() int, hooks *Hooks) error {
	p := tea.NewProgram(newModel(cpu, step, hooks))
	_, err := p.Run()
	return err
}
