package tracker

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/status"
)

// lockStripes bounds the per-user mutexes; users sharing a stripe serialize.
const lockStripes = 256

var (
	ErrSaveFailed  = errors.New("your change was recorded but may not have synced, please check your connection")
	ErrStaleAction = errors.New("your status changed since it was shown, please refresh")
	ErrInvalidKind = errors.New("unknown status kind")
)

// StatusView is what the client renders: the stored profile and the status
// derived from it at the time of the request.
type StatusView struct {
	Profile status.Profile `json:"profile"`
	Status  status.Derived `json:"status"`
	Synced  bool           `json:"synced"`
	Message string         `json:"message,omitempty"`
}

// ProfileView adds intake state to the raw profile.
type ProfileView struct {
	Profile      status.Profile      `json:"profile"`
	IntakeDone   bool                `json:"intake_done"`
	IntakeBranch status.IntakeBranch `json:"intake_branch,omitempty"`
	Exists       bool                `json:"exists"`
}

type Service struct {
	store   ProfileStore
	engine  status.Engine
	clock   status.Clock
	retries int

	// initial backoff between save attempts
	retryInterval time.Duration

	locks [lockStripes]sync.Mutex
}

func NewService(store ProfileStore, engine status.Engine, clock status.Clock, retries int) *Service {
	if clock == nil {
		clock = status.SystemClock{}
	}
	return &Service{
		store:         store,
		engine:        engine,
		clock:         clock,
		retries:       retries,
		retryInterval: 200 * time.Millisecond,
	}
}

// Current derives the user's status now. A user without a profile sees KindNone.
func (s *Service) Current(ctx context.Context, userID uuid.UUID) (*StatusView, error) {
	now := s.clock.Now()
	p, err := s.store.Load(ctx, userID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	return &StatusView{Profile: p, Status: s.engine.Derive(p, now), Synced: true}, nil
}

func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	p, err := s.store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return &ProfileView{}, nil
		}
		return nil, err
	}
	view := &ProfileView{Profile: p, IntakeDone: p.IntakeDone(), Exists: true}
	if !view.IntakeDone {
		view.IntakeBranch = s.engine.Branch(p, s.clock.Now())
	}
	return view, nil
}

// ApplyAction performs the single action offered for the user's current status.
// expected is the kind the client was showing; when set and no longer current the
// action is rejected with ErrStaleAction and nothing is written.
func (s *Service) ApplyAction(ctx context.Context, userID uuid.UUID, expected status.Kind) (*StatusView, error) {
	if expected != "" && !expected.Valid() {
		return nil, ErrInvalidKind
	}

	unlock := s.lock(userID)
	defer unlock()

	now := s.clock.Now()
	p, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := s.engine.Derive(p, now)
	if expected != "" && expected != current.Kind {
		slog.Info("stale status action rejected",
			"user_id", userID.String(), "kind", string(current.Kind), "expected", string(expected))
		return &StatusView{Profile: p, Status: current, Synced: true}, ErrStaleAction
	}

	next := s.engine.Apply(p, current.Kind, now)
	next.Version = p.Version + 1
	view := &StatusView{Profile: next, Status: s.engine.Derive(next, now), Synced: true}

	if err := s.save(ctx, userID, next); err != nil {
		slog.Error("status action not persisted",
			"user_id", userID.String(), "action", string(current.Action), "kind", string(current.Kind), "error", err.Error())
		view.Synced = false
		view.Message = ErrSaveFailed.Error()
		return view, ErrSaveFailed
	}

	slog.Info("status action applied",
		"user_id", userID.String(), "action", string(current.Action), "kind", string(view.Status.Kind))
	return view, nil
}

// CompleteIntake seeds the profile from survey answers. It succeeds once per user.
func (s *Service) CompleteIntake(ctx context.Context, userID uuid.UUID, answers status.IntakeAnswers) (*StatusView, error) {
	unlock := s.lock(userID)
	defer unlock()

	now := s.clock.Now()
	p, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, err := s.engine.Intake(p, answers, now)
	if err != nil {
		return nil, err
	}
	next.Version = p.Version + 1
	view := &StatusView{Profile: next, Status: s.engine.Derive(next, now), Synced: true}

	if err := s.save(ctx, userID, next); err != nil {
		slog.Error("intake not persisted", "user_id", userID.String(), "action", "intake", "error", err.Error())
		view.Synced = false
		view.Message = ErrSaveFailed.Error()
		return view, ErrSaveFailed
	}

	slog.Info("intake completed", "user_id", userID.String(), "kind", string(view.Status.Kind))
	return view, nil
}

func (s *Service) save(ctx context.Context, userID uuid.UUID, p status.Profile) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.MaxInterval = 2 * time.Second

	attempt := 0
	op := func() error {
		attempt++
		err := s.store.Save(ctx, userID, p)
		if err != nil {
			slog.Warn("profile save attempt failed", "user_id", userID.String(), "attempt", attempt, "error", err.Error())
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.retries)), ctx))
}

func (s *Service) lock(userID uuid.UUID) func() {
	mu := s.stripe(userID)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) stripe(userID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(userID[:])
	return &s.locks[h.Sum32()%lockStripes]
}
