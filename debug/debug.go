// Package debug defines the thin hook interface the CPU and PPU call
// into before a fetch and on every register access. It has exactly
// two methods and a no-op default; anything heavier (breakpoint
// tables, a TUI, a trace log) is an external collaborator that
// implements Hooks, per the "debugger UI is out of scope" boundary in
// the core's own spec.
package debug

// AccessKind distinguishes a read from a write in an Access report.
type AccessKind uint8

const (
	Read AccessKind = iota
	Write
)

func (k AccessKind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

// Access describes a single PPU register access, reported to Hooks
// after the access has already taken effect.
type Access struct {
	Kind  AccessKind
	Reg   uint16
	Value uint8
}

// Hooks is injected into the CPU at construction. MayContinue is
// consulted before every instruction fetch; returning false pauses
// the run loop at that PC. OnMemoryAccess is called after every PPU
// register read or write when config.Options.TraceMemory is set, and
// not at all otherwise.
type Hooks interface {
	MayContinue(pc uint16) bool
	OnMemoryAccess(access Access)
}

// NopHooks implements Hooks by doing nothing and always allowing
// execution to continue. It is the default when nothing is attached.
type NopHooks struct{}

func (NopHooks) MayContinue(pc uint16) bool   { return true }
func (NopHooks) OnMemoryAccess(access Access) {}

var _ Hooks = NopHooks{}
