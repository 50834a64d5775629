package settings

import "fmt"

// Scope selects which settings file a write targets.
type Scope int

const (
	// ScopeGlobal is the user-level settings file shared by every workspace.
	ScopeGlobal Scope = iota
	// ScopeWorkspace is the settings file of the current workspace.
	ScopeWorkspace
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeWorkspace:
		return "workspace"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// ParseScope converts a scope name to a Scope
func ParseScope(name string) (Scope, error) {
	switch name {
	case "", "global", "user":
		return ScopeGlobal, nil
	case "workspace":
		return ScopeWorkspace, nil
	default:
		return ScopeGlobal, fmt.Errorf("unknown settings scope: %s", name)
	}
}
