package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

func TestSessionRecordLayout(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := models.Session{
		State:           models.StateCart,
		LastState:       models.StateCart,
		CurrentCategory: "Shirts",
		CurrentItem:     "10",
		Cart:            []models.CartLine{models.NewCartLine("10", 2, "L", "blue")},
		LastInteraction: &at,
	}

	raw, err := EncodeSession(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"state": "cart",
		"lastState": "cart",
		"currentCategory": "Shirts",
		"currentItem": "10",
		"cart": [{"productId": "10", "quantity": 2, "size": "L", "color": "blue"}],
		"lastInteraction": "2026-03-01T12:00:00Z"
	}`, string(raw))

	back, err := DecodeSession(raw)
	require.NoError(t, err)
	assert.Equal(t, s.Cart, back.Cart)
	assert.True(t, at.Equal(*back.LastInteraction))
}

func TestEncodeSessionEmptyCart(t *testing.T) {
	raw, err := EncodeSession(models.Session{State: models.StateInitial, LastState: models.StateInitial})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cart":[]`)
}

func TestDecodeSessionRepairs(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantState     models.SessionState
		wantLastState models.SessionState
		wantCartLen   int
	}{
		{
			name:          "unknown state falls back to lastState",
			raw:           `{"state":"teleporting","lastState":"cart","tempState":"returning","cart":[{"productId":"1","quantity":1,"size":"M","color":"red"}]}`,
			wantState:     models.StateCart,
			wantLastState: models.StateCart,
			wantCartLen:   1,
		},
		{
			name:          "unknown state and lastState restart",
			raw:           `{"state":"x","lastState":"y","cart":[]}`,
			wantState:     models.StateInitial,
			wantLastState: models.StateInitial,
		},
		{
			name:          "undecodable cart",
			raw:           `{"state":"cart","lastState":"cart","cart":"lots"}`,
			wantState:     models.StateInitial,
			wantLastState: models.StateInitial,
		},
		{
			name:          "not json",
			raw:           `not json`,
			wantState:     models.StateInitial,
			wantLastState: models.StateInitial,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeSession([]byte(tt.raw))
			require.ErrorIs(t, err, ErrSessionCorrupt)
			assert.Equal(t, tt.wantState, s.State)
			assert.Equal(t, tt.wantLastState, s.LastState)
			assert.Empty(t, s.TempState)
			assert.Len(t, s.Cart, tt.wantCartLen)
		})
	}
}

func TestDecodeSessionFillsLastState(t *testing.T) {
	s, err := DecodeSession([]byte(`{"state":"main_menu"}`))
	require.NoError(t, err)
	assert.Equal(t, models.StateMainMenu, s.LastState)
	assert.NotNil(t, s.Cart)
}
