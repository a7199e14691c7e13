package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/internal/pricing"
	"github.com/snapnest/booking-backend/internal/selection"
	"github.com/snapnest/booking-backend/pkg/db/models"
	"github.com/snapnest/booking-backend/pkg/enums"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
	"github.com/snapnest/booking-backend/pkg/logger"
	"github.com/snapnest/booking-backend/pkg/metrics"
	"github.com/snapnest/booking-backend/pkg/recaptcha"
)

// Store persists finalized booking requests.
type Store interface {
	Create(ctx context.Context, req *models.BookingRequest) error
}

// Verifier checks the bot-verification token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (*recaptcha.Result, error)
}

// Notifier fans a stored booking out to email and analytics sinks. It must
// not block and its failures never reach the submitter.
type Notifier interface {
	BookingSubmitted(ctx context.Context, payload Payload)
}

// RateLimiter counts attempts per scope inside a fixed window.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Input is a submit attempt. Quote must be recomputed from the current
// catalog, not taken from the client.
type Input struct {
	SessionID string
	Line      catalog.ServiceLine
	Selection *selection.Selection
	Quote     *pricing.Quote
	Request   Request
	RemoteIP  string
}

// Result reports what happened. Honeypot submissions look accepted from the
// outside but carry no payload.
type Result struct {
	ID      uuid.UUID               `json:"id"`
	Outcome enums.SubmissionOutcome `json:"-"`
	Payload *Payload                `json:"-"`
}

type Service interface {
	Submit(ctx context.Context, in Input) (*Result, error)
}

// Options carries the optional collaborators. A nil Verifier disables the bot
// check; a nil Limiter disables the per-email limit.
type Options struct {
	Verifier    Verifier
	Notifier    Notifier
	Limiter     RateLimiter
	EmailLimit  int
	EmailWindow time.Duration
	Metrics     *metrics.BookingMetrics
	Clock       func() time.Time
}

type service struct {
	store     Store
	validator *Validator
	logg      *logger.Logger
	opts      Options
}

func NewService(store Store, validator *Validator, logg *logger.Logger, opts Options) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("booking request store required")
	}
	if validator == nil {
		return nil, fmt.Errorf("submission validator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &service{store: store, validator: validator, logg: logg, opts: opts}, nil
}

func (s *service) Submit(ctx context.Context, in Input) (*Result, error) {
	start := s.opts.Clock()
	outcome := enums.SubmissionOutcomeAccepted
	defer func() {
		s.opts.Metrics.ObserveSubmission(outcome.String(), s.opts.Clock().Sub(start))
	}()

	ctx = s.logg.WithSessionID(ctx, in.SessionID)
	ctx = s.logg.WithServiceLine(ctx, in.Line.Code)

	if in.Request.Honeypot() {
		outcome = enums.SubmissionOutcomeHoneypot
		s.logg.Warn(ctx, "honeypot field filled, dropping submission")
		return &Result{ID: uuid.New(), Outcome: outcome}, nil
	}

	req, err := s.validator.Validate(in.Line, in.Selection, in.Request)
	if err != nil {
		outcome = enums.SubmissionOutcomeInvalid
		return nil, err
	}
	if in.Quote == nil {
		outcome = enums.SubmissionOutcomeInvalid
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "quote required for submission")
	}

	if s.opts.Limiter != nil && s.opts.EmailLimit > 0 {
		allowed, _, limitErr := s.opts.Limiter.FixedWindowAllow(ctx, "submit-email:"+req.Email, int64(s.opts.EmailLimit), s.opts.EmailWindow)
		switch {
		case limitErr != nil:
			s.logg.Warn(ctx, "email rate limit check failed, allowing submission")
		case !allowed:
			outcome = enums.SubmissionOutcomeRateLimited
			return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many bookings for this email, try again later")
		}
	}

	if s.opts.Verifier != nil {
		if _, verr := s.opts.Verifier.Verify(ctx, req.RecaptchaToken, in.RemoteIP); verr != nil {
			if pkgerrors.HasCode(verr, pkgerrors.CodeSecurityCheck) {
				outcome = enums.SubmissionOutcomeSecurityFailed
				s.logg.Warn(ctx, "security check rejected submission")
				return nil, verr
			}
			outcome = enums.SubmissionOutcomeDependencyError
			s.logg.Error(ctx, "security check unavailable", verr)
			return nil, pkgerrors.Wrap(pkgerrors.CodeSecurityCheck, verr, "security check failed")
		}
	}

	payload := BuildPayload(in.SessionID, in.Selection, req, in.Quote, s.opts.Clock())
	row, err := payload.ToModel()
	if err != nil {
		outcome = enums.SubmissionOutcomeDependencyError
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode booking request")
	}
	if err := s.store.Create(ctx, row); err != nil {
		outcome = enums.SubmissionOutcomeDependencyError
		s.logg.Error(ctx, "failed to store booking request", err)
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store booking request")
	}

	ctx = s.logg.WithField(ctx, "booking_request_id", payload.ID.String())
	s.logg.Info(ctx, "booking request stored")
	if s.opts.Notifier != nil {
		s.opts.Notifier.BookingSubmitted(ctx, payload)
	}
	return &Result{ID: payload.ID, Outcome: outcome, Payload: &payload}, nil
}
