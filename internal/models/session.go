package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionState is a step of the shopping conversation
type SessionState string

const (
	StateInitial          SessionState = "initial"
	StateMainMenu         SessionState = "main_menu"
	StateSearching        SessionState = "searching"
	StateSearchResults    SessionState = "search_results"
	StateCategorySelected SessionState = "category_selected"
	StateItemSelected     SessionState = "item_selected"
	StateCart             SessionState = "cart"
	StateCheckout         SessionState = "checkout"
)

// TempStateReturning marks a pending "continue or start over" prompt
const TempStateReturning = "returning"

// Session is the conversational state of one user. It is handled as a value:
// transitions return a new Session and never mutate the one they were given.
type Session struct {
	State           SessionState `json:"state"`
	LastState       SessionState `json:"lastState"`
	TempState       string       `json:"tempState,omitempty"`
	CurrentCategory string       `json:"currentCategory,omitempty"`
	CurrentItem     string       `json:"currentItem,omitempty"`
	SearchResults   []string     `json:"searchResults,omitempty"`
	Cart            []CartLine   `json:"cart"`
	LastInteraction *time.Time   `json:"lastInteraction,omitempty"`
}

// NewSession returns the defaults a first-time user starts with
func NewSession() Session {
	return Session{
		State:     StateInitial,
		LastState: StateInitial,
		Cart:      []CartLine{},
	}
}

// Clone returns a copy that shares no slices or pointers with s
func (s Session) Clone() Session {
	out := s
	out.Cart = slices.Clone(s.Cart)
	if out.Cart == nil {
		out.Cart = []CartLine{}
	}
	out.SearchResults = slices.Clone(s.SearchResults)
	if s.LastInteraction != nil {
		t := *s.LastInteraction
		out.LastInteraction = &t
	}
	return out
}

// IsKnownState reports whether st is one of the conversation steps
func IsKnownState(st SessionState) bool {
	switch st {
	case StateInitial, StateMainMenu, StateSearching, StateSearchResults,
		StateCategorySelected, StateItemSelected, StateCart, StateCheckout:
		return true
	}
	return false
}

// ChatSession stores one user's session record for the SQL session store
type ChatSession struct {
	gorm.Model
	UserID          string         `json:"user_id" gorm:"uniqueIndex;size:128"`
	State           string         `json:"state" gorm:"index;size:32"`
	Data            datatypes.JSON `json:"data"`
	LastInteraction *time.Time     `json:"last_interaction"`
}
