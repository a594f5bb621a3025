package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/modules/tracker"
	"github.com/nestgirl/nestgirl-backend/internal/status"
	"google.golang.org/genai"
)

const MealPlanTTL = 7 * 24 * time.Hour

const (
	maxChatTurns    = 30
	maxChatTurnSize = 2000
	fallbackChat    = "I'm right here with you. Tell me more, how are you feeling right now?"
)

var (
	ErrInvalidGoal = errors.New("goal must be one of lose, gain or maintain")
	ErrInvalidChat = errors.New("chat must end with a non-empty user message")
)

type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

type Meal struct {
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Calories     float64  `json:"calories"`
	Macros       Macros   `json:"macros"`
}

type MealDay struct {
	Day   string `json:"day"`
	Meals []Meal `json:"meals"`
}

type MealPlan struct {
	Goal   string    `json:"goal"`
	Days   []MealDay `json:"days"`
	Source Source    `json:"source"`
}

type ChatReply struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

var goalWording = map[string]string{
	"lose":     "losing weight",
	"gain":     "gaining weight",
	"maintain": "maintaining her weight",
}

var mealPlanSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"day": {Type: genai.TypeString},
			"meals": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type":         {Type: genai.TypeString},
						"title":        {Type: genai.TypeString},
						"description":  {Type: genai.TypeString},
						"ingredients":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"instructions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"calories":     {Type: genai.TypeNumber},
						"macros": {
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"protein": {Type: genai.TypeNumber},
								"carbs":   {Type: genai.TypeNumber},
								"fat":     {Type: genai.TypeNumber},
							},
						},
					},
					PropertyOrdering: []string{"type", "title", "description", "ingredients", "instructions", "calories", "macros"},
				},
			},
		},
		PropertyOrdering: []string{"day", "meals"},
	},
}

// MealPlan returns a seven-day plan for goal, cached per user and goal for a week.
// Without a usable model answer the plan comes back empty with SourceFallback.
func (s *Service) MealPlan(ctx context.Context, userID uuid.UUID, goal string) (*MealPlan, error) {
	goal = strings.ToLower(strings.TrimSpace(goal))
	wording, ok := goalWording[goal]
	if !ok {
		return nil, ErrInvalidGoal
	}

	plan := &MealPlan{Goal: goal, Days: []MealDay{}, Source: SourceFallback}
	key := fmt.Sprintf("mealplan:%s:%s", userID, goal)

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("ai cache read failed", "key", key, "error", err.Error())
	} else if ok {
		if days, err := decodeMealDays(raw); err == nil {
			plan.Days, plan.Source = days, SourceCache
			return plan, nil
		}
	}

	if s.gen == nil {
		return plan, nil
	}

	m := s.member(ctx, userID)
	prompt := fmt.Sprintf(
		"Design a complete weekly meal plan, Monday to Sunday, for a woman who is %s. Her weight is %s kg.",
		wording, orUnknown(m.WeightKg))
	if m.ChronicDiseases != "" {
		prompt += " Take into account: " + m.ChronicDiseases + "."
	}

	raw, err := s.gen.GenerateJSON(ctx, "You are a senior nutrition expert. Return valid JSON only.", prompt, mealPlanSchema)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("meal plan generation failed", "user_id", userID.String(), "error", err.Error())
		}
		return plan, nil
	}
	days, err := decodeMealDays(raw)
	if err != nil {
		slog.Error("meal plan response unreadable", "user_id", userID.String(), "error", err.Error())
		return plan, nil
	}

	if err := s.cache.Set(ctx, key, raw, MealPlanTTL); err != nil {
		slog.Warn("ai cache write failed", "key", key, "error", err.Error())
	}
	plan.Days, plan.Source = days, SourceModel
	return plan, nil
}

func decodeMealDays(raw string) ([]MealDay, error) {
	var days []MealDay
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil, fmt.Errorf("decode meal plan: %w", err)
	}
	if len(days) == 0 {
		return nil, errors.New("meal plan has no days")
	}
	return days, nil
}

// Chat continues a supportive conversation. Replies are never cached; only the
// most recent turns are sent to the model.
func (s *Service) Chat(ctx context.Context, userID uuid.UUID, turns []Turn) (*ChatReply, error) {
	if err := validateChat(turns); err != nil {
		return nil, err
	}
	if len(turns) > maxChatTurns {
		turns = turns[len(turns)-maxChatTurns:]
	}

	view, err := s.statuses.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.gen == nil {
		return &ChatReply{Text: fallbackChat, Source: SourceFallback}, nil
	}

	system := chatInstruction(s.member(ctx, userID), view, s.cal.Today(s.clock.Now()))
	out, err := s.gen.Converse(ctx, system, turns)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("chat generation failed", "user_id", userID.String(), "error", err.Error())
		}
		return &ChatReply{Text: fallbackChat, Source: SourceFallback}, nil
	}
	return &ChatReply{Text: out, Source: SourceModel}, nil
}

func validateChat(turns []Turn) error {
	if len(turns) == 0 {
		return ErrInvalidChat
	}
	for _, t := range turns {
		if t.Role != "user" && t.Role != "model" {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidChat, t.Role)
		}
		if strings.TrimSpace(t.Text) == "" || len(t.Text) > maxChatTurnSize {
			return ErrInvalidChat
		}
	}
	if turns[len(turns)-1].Role != "user" {
		return ErrInvalidChat
	}
	return nil
}

func chatInstruction(m Member, view *tracker.StatusView, today status.Date) string {
	p := view.Profile

	var b strings.Builder
	b.WriteString("You are the user's closest friend and big sister. Speak warmly and casually, ")
	b.WriteString("pay close attention to details, remember what she said earlier in the conversation, ")
	b.WriteString("and end every reply with a gentle follow-up question.\n\nWhat you know about her:\n")
	fmt.Fprintf(&b, "- Name: %s\n", m.Name)
	if !p.BirthDate.IsZero() {
		fmt.Fprintf(&b, "- Age: about %d\n", status.Age(p.BirthDate, today))
	}
	fmt.Fprintf(&b, "- Marital status: %s\n", orUnknown(string(p.MaritalStatus)))
	fmt.Fprintf(&b, "- Motherhood: %s\n", orUnknown(string(p.MotherhoodStatus)))
	fmt.Fprintf(&b, "- Height: %s cm, weight: %s kg\n", orUnknown(m.HeightCm), orUnknown(m.WeightKg))
	fmt.Fprintf(&b, "- Chronic conditions: %s\n", orNone(m.ChronicDiseases))
	fmt.Fprintf(&b, "- Previous surgeries: %s\n", orNone(m.PreviousSurgeries))
	fmt.Fprintf(&b, "- Period issues: %s\n", orNone(p.PeriodIssues))
	fmt.Fprintf(&b, "- Current status: %s\n", adviceContext(view.Status.Kind))
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
