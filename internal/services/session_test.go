package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
	"github.com/Ananth-NQI/shopbot-backend/internal/models"
	"github.com/Ananth-NQI/shopbot-backend/internal/storage"
)

func TestSessionManagerLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	sm := NewSessionManager(store, logger.Nop(), time.Hour)

	s, err := sm.Load(ctx, "new-user")
	require.NoError(t, err)
	assert.Equal(t, models.NewSession(), s)

	broken := models.NewSession()
	broken.State = "???"
	broken.LastState = models.StateCheckout
	require.NoError(t, store.Save(ctx, "u", broken))

	s, err = sm.Load(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, models.StateCheckout, s.State)
}

func TestSessionManagerLockSerializes(t *testing.T) {
	sm := NewSessionManager(storage.NewMemoryStore(), logger.Nop(), time.Hour)

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := sm.Lock("u")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Zero(t, sm.GetSessionStats(time.Now()).ProcessingUsers)
}

func TestSessionManagerLocksAreIndependent(t *testing.T) {
	sm := NewSessionManager(storage.NewMemoryStore(), logger.Nop(), time.Hour)

	unlockA := sm.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := sm.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for b waited on a")
	}
	assert.Equal(t, 1, sm.GetSessionStats(time.Now()).ProcessingUsers)

	unlockA()
	unlockA()
	assert.Zero(t, sm.GetSessionStats(time.Now()).ProcessingUsers)
}

func TestSessionManagerStats(t *testing.T) {
	ctx := context.Background()
	sm := NewSessionManager(storage.NewMemoryStore(), logger.Nop(), time.Minute)

	require.NoError(t, sm.Save(ctx, "a", models.NewSession()))
	require.NoError(t, sm.Save(ctx, "b", models.NewSession()))
	require.NoError(t, sm.Ping(ctx))

	assert.Equal(t, 2, sm.GetSessionStats(time.Now()).ActiveUsers)
	assert.Zero(t, sm.GetSessionStats(time.Now().Add(2*time.Minute)).ActiveUsers)
}
