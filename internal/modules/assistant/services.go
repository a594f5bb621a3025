package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/models"
	"github.com/nestgirl/nestgirl-backend/internal/modules/tracker"
	"github.com/nestgirl/nestgirl-backend/internal/status"
	"gorm.io/gorm"
)

const (
	GreetingTTL = 6 * time.Hour
	AdviceTTL   = 24 * time.Hour
)

const (
	fallbackGreeting  = "Wishing you a bright and gentle day!"
	fallbackAdvice    = "Drink plenty of water and give yourself time to rest today."
	fallbackHoroscope = "The stars say today is your day to shine!"
)

// Source tells the client where a text came from.
type Source string

const (
	SourceModel    Source = "ai"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

type Text struct {
	Text   string      `json:"text"`
	Source Source      `json:"source"`
	Kind   status.Kind `json:"kind,omitempty"`
	Sign   string      `json:"sign,omitempty"`
}

// StatusSource supplies the user's current status.
type StatusSource interface {
	Current(ctx context.Context, userID uuid.UUID) (*tracker.StatusView, error)
}

// Member is the account data the assistant personalises with.
type Member struct {
	Name              string
	HeightCm          string
	WeightKg          string
	ChronicDiseases   string
	PreviousSurgeries string
}

// Directory resolves account data for a user.
type Directory interface {
	Member(ctx context.Context, userID uuid.UUID) (Member, error)
}

// UserDirectory reads members from the users table.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) Member(ctx context.Context, userID uuid.UUID) (Member, error) {
	var user models.User
	err := d.db.WithContext(ctx).
		Select("name", "height_cm", "weight_kg", "chronic_diseases", "previous_surgeries").
		First(&user, "id = ?", userID).Error
	if err != nil {
		return Member{}, fmt.Errorf("load user: %w", err)
	}
	return Member{
		Name:              user.Name,
		HeightCm:          user.HeightCm,
		WeightKg:          user.WeightKg,
		ChronicDiseases:   user.ChronicDiseases,
		PreviousSurgeries: user.PreviousSurgeries,
	}, nil
}

type Service struct {
	gen      Generator // nil when no API key is configured
	cache    Cache
	statuses StatusSource
	users    Directory
	clock    status.Clock
	cal      status.Calendar
}

func NewService(gen Generator, cache Cache, statuses StatusSource, users Directory, clock status.Clock, cal status.Calendar) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if clock == nil {
		clock = status.SystemClock{}
	}
	return &Service{gen: gen, cache: cache, statuses: statuses, users: users, clock: clock, cal: cal}
}

func (s *Service) Greeting(ctx context.Context, userID uuid.UUID) (*Text, error) {
	view, err := s.statuses.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	name := s.name(ctx, userID)

	prompt := fmt.Sprintf(
		"The user's name is %s and she is %s. Write a warm, friendly greeting in under 15 words.",
		name, view.Profile.MaritalStatus)

	text := s.cached(ctx, "greeting:"+userID.String(), GreetingTTL,
		"You are Nestgirl, a caring companion app for women.", prompt, fallbackGreeting)
	return text, nil
}

// Advice is keyed by status kind, so a status change yields fresh advice.
func (s *Service) Advice(ctx context.Context, userID uuid.UUID) (*Text, error) {
	view, err := s.statuses.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	kind := view.Status.Kind
	name := s.name(ctx, userID)

	prompt := fmt.Sprintf(
		"Give %s three very short golden tips because she is %s. Cover both body and mind.",
		name, adviceContext(kind))

	key := fmt.Sprintf("advice:%s:%s", userID, kind)
	text := s.cached(ctx, key, AdviceTTL, "You are a senior women's health consultant.", prompt, fallbackAdvice)
	text.Kind = kind
	return text, nil
}

// Horoscope is shared by every user of the same sign until local midnight.
func (s *Service) Horoscope(ctx context.Context, userID uuid.UUID) (*Text, error) {
	view, err := s.statuses.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	sign := ZodiacSign(view.Profile.BirthDate)
	if sign == "" {
		return &Text{Text: fallbackHoroscope, Source: SourceFallback}, nil
	}

	now := s.clock.Now()
	today := s.cal.Today(now)
	ttl := today.AddDays(1).In(s.cal.Location()).Sub(now)

	prompt := fmt.Sprintf(
		"Write a short, uplifting daily reading for %s focused on luck, love and work. No negative language. At most 40 words.",
		sign)

	key := fmt.Sprintf("horoscope:%s:%s", sign, today)
	text := s.cached(ctx, key, ttl, "You are a professional astrologer and life coach.", prompt, fallbackHoroscope)
	text.Sign = sign
	return text, nil
}

// cached returns the cached text for key, generating and storing it on a miss.
// Cache and model failures degrade to fallback rather than an error.
func (s *Service) cached(ctx context.Context, key string, ttl time.Duration, system, prompt, fallback string) *Text {
	if val, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("ai cache read failed", "key", key, "error", err.Error())
	} else if ok {
		return &Text{Text: val, Source: SourceCache}
	}

	if s.gen == nil {
		return &Text{Text: fallback, Source: SourceFallback}
	}

	out, err := s.gen.Generate(ctx, system, prompt)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("ai generation failed", "key", key, "error", err.Error())
		}
		return &Text{Text: fallback, Source: SourceFallback}
	}

	if err := s.cache.Set(ctx, key, out, ttl); err != nil {
		slog.Warn("ai cache write failed", "key", key, "error", err.Error())
	}
	return &Text{Text: out, Source: SourceModel}
}

func (s *Service) name(ctx context.Context, userID uuid.UUID) string {
	return s.member(ctx, userID).Name
}

// member never fails; a missing directory or row yields a generic member.
func (s *Service) member(ctx context.Context, userID uuid.UUID) Member {
	m := Member{}
	if s.users != nil {
		found, err := s.users.Member(ctx, userID)
		if err != nil {
			slog.Warn("assistant member lookup failed", "user_id", userID.String(), "error", err.Error())
		} else {
			m = found
		}
	}
	if m.Name == "" {
		m.Name = "friend"
	}
	return m
}

func adviceContext(kind status.Kind) string {
	switch kind {
	case status.KindPregnant, status.KindPregnantLate:
		return "pregnant and getting close to giving birth"
	case status.KindPostpartum:
		return "in her postpartum recovery"
	case status.KindPeriodActive:
		return "on her period right now"
	default:
		return "in her usual routine and looking for preventive care"
	}
}
