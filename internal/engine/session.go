package engine

import (
	"sync"

	"alita-assistant/internal/gateway"
)

// State of the conversation. Each awaiting state solicits exactly one piece
// of information and advances only on a positive gateway match.
type State string

const (
	StateIdle           State = "IDLE"
	StateAwaitVoidSP    State = "AWAITING_SP_VOID"
	StateAwaitMutasiSP  State = "AWAITING_SP_MUTATION"
	StateAwaitStoreName State = "AWAITING_STORE_NAME"
	StateAwaitSalesSP   State = "AWAITING_SP_SALES"
	StateAwaitNewEmail  State = "AWAITING_NEW_EMAIL"
)

// Session holds one conversation: its state, the data collected by the
// workflow in progress, and the transcript. A session processes one event
// at a time; Lock/Unlock serialize the renderer's deliveries.
type Session struct {
	mu sync.Mutex

	state State

	// pendingMutasiSP is the order reference of the transfer in progress.
	pendingMutasiSP string
	// pendingSales is the creator snapshot of the reassignment in
	// progress, immutable once fetched until the workflow ends.
	pendingSales *gateway.OrderCreator

	turns    []*Turn
	byID     map[string]*Turn
	inFlight map[string]bool
}

func NewSession() *Session {
	return &Session{
		state:    StateIdle,
		byID:     make(map[string]*Turn),
		inFlight: make(map[string]bool),
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) State() State { return s.state }

// Turns returns the transcript in append order.
func (s *Session) Turns() []*Turn { return s.turns }

// Turn resolves a transcript entry by ID; actions on cards and store lists
// are addressed this way.
func (s *Session) Turn(id string) (*Turn, bool) {
	t, ok := s.byID[id]
	return t, ok
}

func (s *Session) append(t *Turn) *Turn {
	s.turns = append(s.turns, t)
	s.byID[t.ID] = t
	return t
}

func (s *Session) hasPending() bool {
	return s.pendingMutasiSP != "" || s.pendingSales != nil
}

// clearPending drops all workflow data. Called on every terminal
// transition so pending references never outlive their workflow.
func (s *Session) clearPending() {
	s.pendingMutasiSP = ""
	s.pendingSales = nil
}

// beginAction marks a card as having a mutation in flight; it returns
// false when one is already running, guarding against duplicate commits.
func (s *Session) beginAction(turnID string) bool {
	if s.inFlight[turnID] {
		return false
	}
	s.inFlight[turnID] = true
	return true
}

func (s *Session) endAction(turnID string) {
	delete(s.inFlight, turnID)
}
