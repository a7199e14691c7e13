package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/internal/pricing"
	"github.com/snapnest/booking-backend/internal/selection"
	"github.com/snapnest/booking-backend/internal/submission"
	"github.com/snapnest/booking-backend/pkg/config"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
	"github.com/snapnest/booking-backend/pkg/logger"
	"github.com/snapnest/booking-backend/pkg/metrics"
	"github.com/snapnest/booking-backend/pkg/sessiontoken"
)

// Backend is the redis surface the booking service needs for state and locks.
type Backend interface {
	stateStore
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ReleaseIfOwner(ctx context.Context, key, owner string) (bool, error)
	SessionLockKey(sessionID string) string
}

// Started is returned when a session is opened. Token is the signed handle the
// client echoes on every later call.
type Started struct {
	View  *View  `json:"view"`
	Token string `json:"token"`
}

// Service drives booking sessions from first step to submission.
type Service interface {
	Start(ctx context.Context, serviceLine string) (*Started, error)
	Get(ctx context.Context, sessionID string) (*View, error)
	Mutate(ctx context.Context, sessionID string, m Mutation) (*View, error)
	Quote(ctx context.Context, serviceLine string, in pricing.QuoteInput) (*pricing.Quote, error)
	Submit(ctx context.Context, sessionID string, req submission.Request, remoteIP string) (*submission.Result, error)
}

type ServiceParams struct {
	Catalog    catalog.Provider
	Engine     *pricing.Engine
	Submission submission.Service
	Backend    Backend
	Session    config.SessionConfig
	Limits     selection.Limits
	Logger     *logger.Logger
	Metrics    *metrics.BookingMetrics
}

type service struct {
	catalog    catalog.Provider
	engine     *pricing.Engine
	submission submission.Service
	backend    Backend
	store      *sessionStore
	session    config.SessionConfig
	limits     selection.Limits
	logg       *logger.Logger
	metrics    *metrics.BookingMetrics
}

func NewService(p ServiceParams) (Service, error) {
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog provider required")
	}
	if p.Engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if p.Submission == nil {
		return nil, fmt.Errorf("submission service required")
	}
	if p.Backend == nil {
		return nil, fmt.Errorf("session backend required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	stateTTL := p.Session.StateTTL
	if stateTTL <= 0 {
		stateTTL = p.Session.TTL
	}
	return &service{
		catalog:    p.Catalog,
		engine:     p.Engine,
		submission: p.Submission,
		backend:    p.Backend,
		store:      &sessionStore{client: p.Backend, ttl: stateTTL},
		session:    p.Session,
		limits:     p.Limits,
		logg:       p.Logger,
		metrics:    p.Metrics,
	}, nil
}

func (s *service) Start(ctx context.Context, serviceLine string) (*Started, error) {
	snap, err := s.catalog.Snapshot(ctx, serviceLine)
	if err != nil {
		return nil, err
	}
	machine, err := s.machine(snap)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now().UTC()
	state := &State{
		SessionID: uuid.NewString(),
		Selection: selection.New(snap.ServiceLine),
		CreatedAt: now,
		UpdatedAt: now,
	}
	token, err := sessiontoken.Mint(s.session, now, state.SessionID, snap.ServiceLine.Code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token")
	}
	view, err := s.render(machine, state)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}

	ctx = s.logg.WithSessionID(ctx, state.SessionID)
	ctx = s.logg.WithServiceLine(ctx, snap.ServiceLine.Code)
	s.logg.Info(ctx, "booking session started")
	return &Started{View: view, Token: token}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*View, error) {
	state, machine, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.render(machine, state)
}

func (s *service) Mutate(ctx context.Context, sessionID string, m Mutation) (*View, error) {
	var view *View
	err := s.withLock(ctx, sessionID, func() error {
		state, machine, err := s.open(ctx, sessionID)
		if err != nil {
			return err
		}

		next, err := m.apply(machine, state.Selection)
		if err != nil {
			s.noteRejection(ctx, state, m, err)
			return err
		}

		state.Selection = next
		state.Version++
		state.UpdatedAt = s.engine.Now().UTC()
		if view, err = s.render(machine, state); err != nil {
			return err
		}
		return s.store.Save(ctx, state)
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Quote prices an arbitrary selection without a session.
func (s *service) Quote(ctx context.Context, serviceLine string, in pricing.QuoteInput) (*pricing.Quote, error) {
	snap, err := s.catalog.Snapshot(ctx, serviceLine)
	if err != nil {
		return nil, err
	}
	quote, err := s.engine.Quote(snap, in)
	if err != nil {
		return nil, err
	}
	s.metrics.IncQuote(snap.ServiceLine.Code, quote.ContactForPrice)
	return quote, nil
}

// Submit finalizes the session. The quote is recomputed from the current
// catalog. A failed submission keeps the session so the user can retry.
func (s *service) Submit(ctx context.Context, sessionID string, req submission.Request, remoteIP string) (*submission.Result, error) {
	var result *submission.Result
	err := s.withLock(ctx, sessionID, func() error {
		state, machine, err := s.open(ctx, sessionID)
		if err != nil {
			return err
		}
		snap := machine.Snapshot()

		var quote *pricing.Quote
		if state.Selection.CanCompleteBooking() {
			if quote, err = s.engine.Quote(snap, state.Selection.QuoteInput()); err != nil {
				return err
			}
		}

		result, err = s.submission.Submit(ctx, submission.Input{
			SessionID: state.SessionID,
			Line:      snap.ServiceLine,
			Selection: state.Selection,
			Quote:     quote,
			Request:   req,
			RemoteIP:  remoteIP,
		})
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeGateViolation) {
				s.metrics.IncGateViolation(state.Selection.Step.String())
			}
			return err
		}

		if err := s.store.Delete(ctx, state.SessionID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to clear submitted booking session")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// open loads the session, pairs it with the current catalog and drops
// selections the catalog no longer offers.
func (s *service) open(ctx context.Context, sessionID string) (*State, *selection.Machine, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	snap, err := s.catalog.Snapshot(ctx, state.Selection.ServiceLine)
	if err != nil {
		return nil, nil, err
	}
	machine, err := s.machine(snap)
	if err != nil {
		return nil, nil, err
	}

	next, changed := machine.Reconcile(state.Selection)
	if changed {
		ctx = s.logg.WithSessionID(ctx, sessionID)
		s.logg.Info(ctx, "booking selection reconciled with catalog")
		state.Selection = next
		state.Version++
		state.UpdatedAt = s.engine.Now().UTC()
		if err := s.store.Save(ctx, state); err != nil {
			return nil, nil, err
		}
	}
	return state, machine, nil
}

func (s *service) machine(snap *catalog.Snapshot) (*selection.Machine, error) {
	machine, err := selection.NewMachine(snap, s.limits, s.engine.Now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build booking flow")
	}
	return machine, nil
}

// render prices the selection. Selections with nothing chosen have no quote.
func (s *service) render(machine *selection.Machine, state *State) (*View, error) {
	var quote *pricing.Quote
	if state.Selection.CanCompleteBooking() {
		var err error
		quote, err = s.engine.Quote(machine.Snapshot(), state.Selection.QuoteInput())
		if err != nil {
			return nil, err
		}
		s.metrics.IncQuote(state.Selection.ServiceLine, quote.ContactForPrice)
	}
	return buildView(s.engine, machine, state, quote), nil
}

func (s *service) withLock(ctx context.Context, sessionID string, fn func() error) error {
	lock := newSessionLock(s.backend, sessionID, s.session.LockTTL)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock booking session")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "booking session is busy, retry shortly")
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to release booking session lock")
		}
	}()
	return fn()
}

func (s *service) noteRejection(ctx context.Context, state *State, m Mutation, err error) {
	if !pkgerrors.HasCode(err, pkgerrors.CodeGateViolation) {
		return
	}
	s.metrics.IncGateViolation(state.Selection.Step.String())
	ctx = s.logg.WithSessionID(ctx, state.SessionID)
	ctx = s.logg.WithBookingStep(ctx, state.Selection.Step.String())
	ctx = s.logg.WithField(ctx, "mutation", string(m.Kind))
	s.logg.Debug(ctx, "booking gate violation")
}
