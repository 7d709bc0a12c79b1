package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"gorm.io/datatypes"

	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
	"github.com/Ananth-NQI/shopbot-backend/internal/models"
	"github.com/Ananth-NQI/shopbot-backend/internal/storage"
	"github.com/Ananth-NQI/shopbot-backend/internal/utils"
)

// Report periods
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

var ErrInvalidPeriod = errors.New("period must be daily, weekly or monthly")

const (
	topProductsLimit    = 5
	recentSearchesLimit = 5
)

// AnalyticsService records interaction events in the background and builds
// reports from them
type AnalyticsService struct {
	store   storage.AnalyticsStore
	log     *logger.Logger
	events  chan *models.AnalyticsEvent
	dropped atomic.Int64
	now     func() time.Time
}

// NewAnalyticsService creates the recorder. Events are queued in a buffer
// of the given size and written by Run.
func NewAnalyticsService(store storage.AnalyticsStore, log *logger.Logger, buffer int) *AnalyticsService {
	if buffer <= 0 {
		buffer = 256
	}
	return &AnalyticsService{
		store:  store,
		log:    log,
		events: make(chan *models.AnalyticsEvent, buffer),
		now:    time.Now,
	}
}

// Record queues an event without blocking. When the queue is full the
// event is dropped.
func (a *AnalyticsService) Record(userID string, ev Event) {
	details, err := json.Marshal(ev.Details)
	if err != nil {
		a.log.Warn("⚠️ Analytics details not encodable", "action", ev.Action, "error", err)
		details = []byte("{}")
	}

	event := &models.AnalyticsEvent{
		ID:        utils.NewEventID(),
		UserID:    userID,
		Action:    ev.Action,
		Details:   datatypes.JSON(details),
		Timestamp: a.now().UTC(),
	}

	select {
	case a.events <- event:
	default:
		if n := a.dropped.Add(1); n == 1 || n%100 == 0 {
			a.log.Warn("⚠️ Analytics queue full, dropping events", "dropped", n)
		}
	}
}

// Dropped is how many events were discarded because the queue was full
func (a *AnalyticsService) Dropped() int64 {
	return a.dropped.Load()
}

// Run writes queued events until ctx is done, then writes whatever is
// still queued
func (a *AnalyticsService) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-a.events:
			a.write(ctx, ev)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for {
				select {
				case ev := <-a.events:
					a.write(flushCtx, ev)
				default:
					return nil
				}
			}
		}
	}
}

func (a *AnalyticsService) write(ctx context.Context, ev *models.AnalyticsEvent) {
	if err := a.store.RecordEvent(ctx, ev); err != nil {
		a.log.Error("❌ Failed to record analytics event", "action", ev.Action, "user_id", ev.UserID, "error", err)
	}
}

// Prune keeps only the newest keep events
func (a *AnalyticsService) Prune(ctx context.Context, keep int) (int64, error) {
	return a.store.PruneEvents(ctx, keep)
}

// PeriodBounds returns the window a report covers. Daily starts at
// midnight of the day of at, weekly and monthly reach back from at.
func PeriodBounds(period string, at time.Time) (time.Time, time.Time, error) {
	switch period {
	case "", PeriodDaily:
		y, m, d := at.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, at.Location()), at, nil
	case PeriodWeekly:
		return at.AddDate(0, 0, -7), at, nil
	case PeriodMonthly:
		return at.AddDate(0, -1, 0), at, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
}

type eventDetails struct {
	ProductID    string `json:"productId"`
	Quantity     int    `json:"quantity"`
	Keyword      string `json:"keyword"`
	ResultsCount int    `json:"resultsCount"`
}

// Report aggregates the events recorded within the period ending at at
func (a *AnalyticsService) Report(ctx context.Context, period string, at time.Time) (*models.AnalyticsReport, error) {
	start, end, err := PeriodBounds(period, at)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = PeriodDaily
	}

	events, err := a.store.ListEvents(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list analytics events: %w", err)
	}

	report := &models.AnalyticsReport{
		Period:         period,
		Start:          start,
		End:            end,
		TopProducts:    []models.ProductViewCount{},
		RecentSearches: []models.SearchSummary{},
	}
	users := make(map[string]struct{})
	views := make(map[string]int)
	var searches []models.SearchSummary

	for _, ev := range events {
		report.Summary.TotalInteractions++
		users[ev.UserID] = struct{}{}

		var d eventDetails
		if len(ev.Details) > 0 {
			if err := json.Unmarshal(ev.Details, &d); err != nil {
				a.log.Warn("⚠️ Skipping unreadable analytics details", "id", ev.ID, "error", err)
			}
		}

		switch ev.Action {
		case models.ActionProductView:
			report.Summary.ProductViews++
			if d.ProductID != "" {
				views[d.ProductID]++
			}
		case models.ActionCartAdd:
			report.Summary.CartAdditions++
			if d.Quantity <= 0 {
				d.Quantity = 1
			}
			report.Summary.CartQuantity += d.Quantity
		case models.ActionCheckout:
			report.Summary.Checkouts++
		case models.ActionSearch:
			report.Summary.Searches++
			searches = append(searches, models.SearchSummary{
				Timestamp:    ev.Timestamp,
				Keyword:      d.Keyword,
				ResultsCount: d.ResultsCount,
			})
		}
	}
	report.Summary.UniqueUsers = len(users)

	for id, n := range views {
		report.TopProducts = append(report.TopProducts, models.ProductViewCount{ProductID: id, Views: n})
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		pi, pj := report.TopProducts[i], report.TopProducts[j]
		if pi.Views != pj.Views {
			return pi.Views > pj.Views
		}
		return pi.ProductID < pj.ProductID
	})
	if len(report.TopProducts) > topProductsLimit {
		report.TopProducts = report.TopProducts[:topProductsLimit]
	}

	if len(searches) > recentSearchesLimit {
		searches = searches[len(searches)-recentSearchesLimit:]
	}
	report.RecentSearches = append(report.RecentSearches, searches...)

	return report, nil
}
