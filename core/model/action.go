package model

import (
	"fmt"
	"strings"
)

// Action is the battery order placed for a single time slot.
type Action int8

const (
	ActionNone Action = iota
	ActionBuy
	ActionSell
)

// String returns a human-readable representation of the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "NONE"
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	default:
		return "unknown"
	}
}

// ParseAction accepts the names returned by String as well as the numeric
// codes 0, 1 and 2 used by older reports.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE", "0":
		return ActionNone, nil
	case "BUY", "1":
		return ActionBuy, nil
	case "SELL", "2":
		return ActionSell, nil
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

// MarshalText encodes the action by name.
func (a Action) MarshalText() ([]byte, error) {
	if a < ActionNone || a > ActionSell {
		return nil, fmt.Errorf("unknown action %d", int8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action name or code.
func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
