package storage

import (
	"encoding/json"
	"fmt"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

// EncodeSession serializes a session record
func EncodeSession(session models.Session) ([]byte, error) {
	if session.Cart == nil {
		session.Cart = []models.CartLine{}
	}
	return json.Marshal(session)
}

// DecodeSession parses a stored record. A damaged record still yields a
// usable session, returned together with an error wrapping
// ErrSessionCorrupt:
//   - an unknown state falls back to lastState, or initial
//   - a record that does not decode at all restarts at initial with an
//     empty cart
func DecodeSession(raw []byte) (models.Session, error) {
	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.NewSession(), fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	if s.Cart == nil {
		s.Cart = []models.CartLine{}
	}
	if s.LastState == "" {
		s.LastState = s.State
	}
	if models.IsKnownState(s.State) && models.IsKnownState(s.LastState) {
		return s, nil
	}

	err := fmt.Errorf("%w: state %q, lastState %q", ErrSessionCorrupt, s.State, s.LastState)
	if !models.IsKnownState(s.LastState) {
		s.LastState = models.StateInitial
	}
	if !models.IsKnownState(s.State) {
		s.State = s.LastState
	}
	s.TempState = ""
	return s, err
}
