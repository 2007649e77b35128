package engine

import (
	"github.com/google/uuid"

	"alita-assistant/internal/gateway"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind tells the renderer which payload fields of a Turn are meaningful.
type Kind string

const (
	// KindText is a plain message, optionally with quick-reply chips.
	KindText Kind = "text"
	// KindProducts carries a page of product search results.
	KindProducts Kind = "products"
	// KindVoidCard asks for confirmation before voiding the shown order.
	KindVoidCard Kind = "void-card"
	// KindStoreList asks the user to pick the destination store for NoSP.
	KindStoreList Kind = "store-list"
	// KindCreatorCard asks for confirmation before reassigning NoSP.
	KindCreatorCard Kind = "creator-card"
	// KindOutcome is the terminal narration of a finished workflow.
	KindOutcome Kind = "outcome"
)

// Turn is one message of the transcript. Turns are append-only; the single
// permitted in-place update is resolving a confirmation card (Resolved,
// Canceled, Err), which the renderer reflects by editing the already-sent
// message.
type Turn struct {
	ID   string
	Role Role
	Kind Kind
	Text string

	Chips    []string
	Products []gateway.Product
	Order    *gateway.Order
	Stores   []gateway.Store

	// NoSP is the order reference a store list or creator card acts on.
	NoSP            string
	FromCreatorName string
	NewUser         *gateway.User

	Resolved bool
	Canceled bool
	Err      string
}

func newTurn(role Role, kind Kind, text string) *Turn {
	return &Turn{ID: uuid.NewString(), Role: role, Kind: kind, Text: text}
}

func assistantText(text string, chips ...string) *Turn {
	t := newTurn(RoleAssistant, KindText, text)
	t.Chips = chips
	return t
}

func outcome(text string) *Turn {
	return newTurn(RoleAssistant, KindOutcome, text)
}

// Event is an input delivered by the renderer: a text submission, a chip
// click, or an action on a previously emitted turn.
type Event interface{ isEvent() }

type TextEvent struct {
	Text string
}

// ChipEvent is a quick-reply click, handled identically to typing the
// chip's label.
type ChipEvent struct {
	Label string
}

type StoreSelectEvent struct {
	TurnID  string
	StoreID int64
}

// ConfirmEvent commits the action of a confirmation card.
type ConfirmEvent struct {
	TurnID string
}

// CancelEvent abandons the workflow a card or store list belongs to.
type CancelEvent struct {
	TurnID string
}

func (TextEvent) isEvent()        {}
func (ChipEvent) isEvent()        {}
func (StoreSelectEvent) isEvent() {}
func (ConfirmEvent) isEvent()     {}
func (CancelEvent) isEvent()      {}
