package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Ananth-NQI/shopbot-backend/internal/config"
	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
	"github.com/Ananth-NQI/shopbot-backend/internal/models"
	"github.com/Ananth-NQI/shopbot-backend/internal/utils"
)

// DefaultUserName is used when the transport does not know the sender's name
const DefaultUserName = "User"

var ErrMissingSender = errors.New("message has no sender")

// Scheduler runs cancelable delayed work keyed by user
type Scheduler interface {
	Schedule(key string, delay time.Duration, fn func(ctx context.Context))
	Cancel(key string)
}

// EventRecorder accepts analytics events without blocking
type EventRecorder interface {
	Record(userID string, ev Event)
}

// WhatsAppOptions tunes message handling
type WhatsAppOptions struct {
	TypingDelay     time.Duration
	MenuReturnDelay time.Duration
	Messages        config.Messages
}

// Result describes what a handled message produced
type Result struct {
	UserID  string              `json:"user_id"`
	State   models.SessionState `json:"state"`
	Replies []Reply             `json:"replies"`
	// Failed counts replies the sender could not deliver
	Failed int `json:"failed,omitempty"`
}

// WhatsAppService handles WhatsApp message processing
type WhatsAppService struct {
	engine    *ConversationEngine
	sessions  *SessionManager
	sender    Sender
	images    ImageFetcher
	analytics EventRecorder
	scheduler Scheduler
	opts      WhatsAppOptions
	log       *logger.Logger
	now       func() time.Time
}

// NewWhatsAppService creates a new WhatsApp service
func NewWhatsAppService(
	engine *ConversationEngine,
	sessions *SessionManager,
	sender Sender,
	images ImageFetcher,
	analytics EventRecorder,
	scheduler Scheduler,
	opts WhatsAppOptions,
	log *logger.Logger,
) *WhatsAppService {
	defaults := config.DefaultSettings().Messages
	if opts.Messages.ErrorMessage == "" {
		opts.Messages.ErrorMessage = defaults.ErrorMessage
	}
	if opts.Messages.PersistFailure == "" {
		opts.Messages.PersistFailure = defaults.PersistFailure
	}
	return &WhatsAppService{
		engine:    engine,
		sessions:  sessions,
		sender:    sender,
		images:    images,
		analytics: analytics,
		scheduler: scheduler,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

// HandleMessage runs one inbound message through the conversation and
// sends the replies. Messages from the same user are handled one at a
// time. Failures inside the conversation are answered in chat; the error
// return is only for messages that cannot be handled at all.
func (w *WhatsAppService) HandleMessage(ctx context.Context, from, userName, message string) (res *Result, err error) {
	userID := utils.NormalizePhone(from)
	if userID == "" {
		return nil, ErrMissingSender
	}
	if userName == "" {
		userName = DefaultUserName
	}
	log := w.log.With("user_id", userID)

	// a new message supersedes the pending post-order menu
	w.scheduler.Cancel(userID)

	unlock := w.sessions.Lock(userID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Error("🔥 Panic while handling message", "panic", r, "stack", string(debug.Stack()))
			res = w.apologize(ctx, userID, w.opts.Messages.ErrorMessage)
			err = nil
		}
	}()

	log.Info("📱 WhatsApp message received", "text", message)

	// typing pause
	if err := sleepContext(ctx, w.opts.TypingDelay); err != nil {
		return nil, err
	}

	session, err := w.sessions.Load(ctx, userID)
	if err != nil {
		log.Error("❌ Failed to load session", "error", err)
		return w.apologize(ctx, userID, w.opts.Messages.PersistFailure), nil
	}

	next, out := w.engine.Transition(session, message, userName, w.now())

	// the turn only counts once it is saved
	if err := w.sessions.Save(ctx, userID, next); err != nil {
		log.Error("❌ Failed to save session", "error", err, "state", string(next.State))
		return w.apologize(ctx, userID, w.opts.Messages.PersistFailure), nil
	}

	res = &Result{UserID: userID, State: next.State}
	res.Replies, res.Failed = w.deliver(ctx, userID, out.Replies)

	for _, ev := range out.Events {
		w.analytics.Record(userID, ev)
	}
	if out.ScheduleMenu {
		w.scheduleMenu(userID, userName)
	}

	log.Debug("✅ Message handled", "from_state", string(session.State), "to_state", string(next.State), "replies", len(res.Replies))
	return res, nil
}

// deliver resolves pictures and sends the replies in order. A picture that
// cannot be fetched turns its reply into plain text.
func (w *WhatsAppService) deliver(ctx context.Context, userID string, replies []Reply) ([]Reply, int) {
	sent := make([]Reply, 0, len(replies))
	failed := 0
	for _, reply := range replies {
		if reply.HasImage() {
			if data := w.images.Fetch(ctx, reply.ImageURL); data != nil {
				reply.Image = data
			} else {
				reply = reply.TextOnly()
			}
		}
		if err := w.sender.Send(ctx, userID, reply); err != nil {
			w.log.Error("❌ Failed to send reply", "user_id", userID, "error", err)
			failed++
		}
		sent = append(sent, reply)
	}
	return sent, failed
}

func (w *WhatsAppService) apologize(ctx context.Context, userID, msg string) *Result {
	reply := Reply{Text: msg}
	res := &Result{UserID: userID, Replies: []Reply{reply}}
	if err := w.sender.Send(ctx, userID, reply); err != nil {
		w.log.Error("❌ Failed to send apology", "user_id", userID, "error", err)
		res.Failed = 1
	}
	return res
}

func (w *WhatsAppService) scheduleMenu(userID, userName string) {
	w.scheduler.Schedule(userID, w.opts.MenuReturnDelay, func(ctx context.Context) {
		if err := w.ReturnToMenu(ctx, userID, userName); err != nil {
			w.log.Warn("⚠️ Post-order menu not sent", "user_id", userID, "error", err)
		}
	})
}

// ReturnToMenu sends the main menu to a user who just placed an order, if
// they have not moved on in the meantime
func (w *WhatsAppService) ReturnToMenu(ctx context.Context, userID, userName string) error {
	unlock := w.sessions.Lock(userID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := w.sessions.Load(ctx, userID)
	if err != nil {
		return err
	}
	next, out, ok := w.engine.ReturnToMenu(session, userName)
	if !ok {
		return nil
	}
	if err := w.sessions.Save(ctx, userID, next); err != nil {
		return fmt.Errorf("return to menu: %w", err)
	}
	w.deliver(ctx, userID, out.Replies)
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
