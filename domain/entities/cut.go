package entities

import (
	"fmt"
	"strings"
)

// Action is the mutation a Cut requests.
type Action uint8

const (
	// ActionAdd binds unregistered capabilities to a module.
	ActionAdd Action = iota + 1

	// ActionReplace moves registered capabilities to another module.
	ActionReplace

	// ActionRemove unbinds capabilities. Its target is always NullModule.
	ActionRemove
)

// ParseAction parses "add", "replace" or "remove".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add":
		return ActionAdd, nil
	case "replace":
		return ActionReplace, nil
	case "remove":
		return ActionRemove, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Valid reports whether a is one of the three defined actions.
func (a Action) Valid() bool {
	return a >= ActionAdd && a <= ActionRemove
}

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionReplace:
		return "replace"
	case ActionRemove:
		return "remove"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", a)
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	v, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Cut is one requested mutation of the registry.
type Cut struct {
	Target       ModuleRef      `json:"target" yaml:"target"`
	Action       Action         `json:"action" yaml:"action"`
	Capabilities []CapabilityID `json:"capabilities" yaml:"capabilities"`
}

// NewCut builds a cut with duplicate capabilities dropped.
func NewCut(target ModuleRef, action Action, caps ...CapabilityID) Cut {
	return Cut{Target: target, Action: action, Capabilities: UniqueCapabilities(caps)}
}

// AddCut is shorthand for NewCut(Module(id), ActionAdd, caps...).
func AddCut(id ModuleID, caps ...CapabilityID) Cut {
	return NewCut(Module(id), ActionAdd, caps...)
}

// ReplaceCut is shorthand for NewCut(Module(id), ActionReplace, caps...).
func ReplaceCut(id ModuleID, caps ...CapabilityID) Cut {
	return NewCut(Module(id), ActionReplace, caps...)
}

// RemoveCut is shorthand for NewCut(NullModule, ActionRemove, caps...).
func RemoveCut(caps ...CapabilityID) Cut {
	return NewCut(NullModule, ActionRemove, caps...)
}

func (c Cut) String() string {
	ids := make([]string, len(c.Capabilities))
	for i, id := range c.Capabilities {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s(%s,{%s})", strings.ToUpper(c.Action.String()), c.Target, strings.Join(ids, ","))
}

// Kind names one of the three diff kinds.
type Kind string

const (
	KindAdditions    Kind = "additions"
	KindReplacements Kind = "replacements"
	KindRemovals     Kind = "removals"
)

// Kinds lists every diff kind in evaluation order.
func Kinds() []Kind {
	return []Kind{KindAdditions, KindReplacements, KindRemovals}
}

// Action returns the cut action produced by the kind.
func (k Kind) Action() Action {
	switch k {
	case KindAdditions:
		return ActionAdd
	case KindReplacements:
		return ActionReplace
	case KindRemovals:
		return ActionRemove
	}
	return 0
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k.Action().Valid()
}
