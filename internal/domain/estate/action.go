package estate

import (
	"errors"
	"fmt"
)

var ErrUnknownAction = errors.New("unknown estate action")

type ActionKind string

const (
	ActionFreeze      ActionKind = "freeze"
	ActionEject       ActionKind = "eject"
	ActionEstateEject ActionKind = "estate_eject"
)

func ParseAction(s string) (ActionKind, error) {
	switch k := ActionKind(s); k {
	case ActionFreeze, ActionEject, ActionEstateEject:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Outcome is the answer to a confirmation prompt.
type Outcome string

const (
	OutcomePrimary   Outcome = "primary"
	OutcomeAlternate Outcome = "alternate"
	OutcomeDismiss   Outcome = "dismiss"
)

func ParseOutcome(s string) (Outcome, bool) {
	switch o := Outcome(s); o {
	case OutcomePrimary, OutcomeAlternate, OutcomeDismiss:
		return o, true
	default:
		return "", false
	}
}

// Prompt describes the confirmation shown before an action is sent.
type Prompt struct {
	Action     ActionKind `json:"action"`
	TargetName string     `json:"target_name"`
	Primary    string     `json:"primary"`
	Alternate  string     `json:"alternate"`
}

func PromptFor(action ActionKind, targetName string) Prompt {
	p := Prompt{Action: action, TargetName: targetName}
	switch action {
	case ActionFreeze:
		p.Primary, p.Alternate = "Freeze", "Unfreeze"
	case ActionEject:
		p.Primary, p.Alternate = "Eject", "Eject and ban"
	case ActionEstateEject:
		p.Primary, p.Alternate = "Kick from estate", "Kick and ban from estate"
	}
	return p
}
