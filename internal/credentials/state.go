package credentials

import "time"

// Phase enumerates the credential state machine.
type Phase int

const (
	PhaseUnset Phase = iota
	PhaseValid
)

func (p Phase) String() string {
	if p == PhaseValid {
		return "valid"
	}
	return "unset"
}

// State is the closed credential state. A token exists only while valid.
type State struct {
	phase Phase
	token Token
}

func unset() State { return State{phase: PhaseUnset} }

func valid(token Token) State { return State{phase: PhaseValid, token: token} }

func (s State) Phase() Phase { return s.phase }

// Token returns the held token while valid.
func (s State) Token() (Token, bool) {
	return s.token, s.phase == PhaseValid
}

// Status is a read-only view of the manager for display.
type Status struct {
	Provider string     `json:"provider"`
	Ready    bool       `json:"ready"`
	Phase    string     `json:"phase"`
	Granting bool       `json:"granting"`
	Account  string     `json:"account,omitempty"`
	Expiry   *time.Time `json:"expiry,omitempty"`
	Error    string     `json:"error,omitempty"`
}
