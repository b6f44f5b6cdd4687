package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"nesa-fulfillment/internal/domain"
)

const defaultQueryTimeout = 10 * time.Second

// Intent display names routed by the service.
const (
	IntentWelcome       = "Default Welcome Intent"
	IntentPermission    = "actions_intent_PERMISSION"
	IntentScheduleEvent = "response_schedule_event"
	IntentNames         = "response_names"
	IntentLocation      = "response_location"
	IntentWhen          = "response_when"
)

type PlacesSearcher interface {
	QueryURL(lat, lng string) string
	NearbySearch(ctx context.Context, lat, lng string) (string, error)
}

type TurnRecorder interface {
	RecordTurn(ctx context.Context, session, intent, responseID string, endConversation bool) error
}

type intentHandler func(ctx context.Context, turn domain.Turn, reply *domain.Reply)

// FulfillmentService answers one conversation turn at a time. It holds no
// per-conversation state; everything a later turn needs goes back to the
// platform in the reply's data bag.
type FulfillmentService struct {
	places       PlacesSearcher
	turns        TurnRecorder
	logger       *slog.Logger
	queryTimeout time.Duration
	routes       map[string]intentHandler

	inflight sync.WaitGroup
}

// NewFulfillmentService wires the intent table. turns may be nil to disable
// the turn log.
func NewFulfillmentService(places PlacesSearcher, turns TurnRecorder, logger *slog.Logger, queryTimeout time.Duration) (*FulfillmentService, error) {
	if places == nil {
		return nil, errors.New("usecase: places searcher must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	s := &FulfillmentService{
		places:       places,
		turns:        turns,
		logger:       logger,
		queryTimeout: queryTimeout,
	}
	s.routes = map[string]intentHandler{
		IntentWelcome:       s.welcome,
		IntentPermission:    s.permission,
		IntentScheduleEvent: s.scheduleEvent,
		IntentNames:         s.names,
		IntentLocation:      s.location,
		IntentWhen:          s.when,
	}
	return s, nil
}

// Fulfill runs the handler registered for turn.Intent and returns the
// reply. The places query started by the permission intent is not awaited.
func (s *FulfillmentService) Fulfill(ctx context.Context, turn domain.Turn) (domain.Reply, error) {
	intent := strings.TrimSpace(turn.Intent)
	if intent == "" {
		return domain.Reply{}, newError(ErrorInvalidInput, "missing_intent", nil)
	}
	handle, ok := s.routes[intent]
	if !ok {
		return domain.Reply{}, newError(ErrorUnknownIntent, "no_handler:"+intent, nil)
	}

	reply := domain.NewReply(turn.Data.Clone())
	handle(ctx, turn, reply)
	s.recordTurn(ctx, turn, reply)
	return *reply, nil
}

// Wait blocks until every places query started so far has settled.
func (s *FulfillmentService) Wait() {
	s.inflight.Wait()
}

// queryPlaces fires the nearby search on its own goroutine. The query
// outlives request cancellation but not queryTimeout; its outcome is only
// logged.
func (s *FulfillmentService) queryPlaces(ctx context.Context, session, lat, lng string) {
	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.queryTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()

		status, err := s.places.NearbySearch(qctx, lat, lng)
		if err != nil {
			s.logger.Warn("places query failed", "session", session, "err", err)
			return
		}
		s.logger.Info("places query complete", "session", session, "status", status, "url", s.places.QueryURL(lat, lng))
	}()
}

func (s *FulfillmentService) recordTurn(ctx context.Context, turn domain.Turn, reply *domain.Reply) {
	if s.turns == nil {
		return
	}
	if err := s.turns.RecordTurn(ctx, turn.Session, turn.Intent, turn.ResponseID, reply.EndConversation); err != nil {
		s.logger.Warn("turn log write failed", "session", turn.Session, "intent", turn.Intent, "err", err)
	}
}
