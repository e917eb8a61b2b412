package trend

import (
	"context"
	"sort"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// Suggestion is ephemeral, like the Result that produced it.
type Suggestion struct {
	Category   Category `json:"category"`
	Priority   Priority `json:"priority"`
	MessageKey string   `json:"message_key"`
	Message    string   `json:"message"`
	Trend      *Result  `json:"trend,omitempty"`
}

// Categories where a decline is a safety signal rather than a nice-to-have.
var safetyCategories = map[Category]bool{
	CategorySleep:     true,
	CategoryHydration: true,
	CategoryMood:      true,
}

// suggestionCategory collapses streak results onto the category they are
// about, so per-category dedup sees them as one signal.
func suggestionCategory(c Category) Category {
	if c == CategoryTaskStreak {
		return CategoryTasks
	}
	return c
}

type Engine struct {
	Analyzer   *Analyzer
	WindowDays int
}

// Suggestions maps the current trends through the rule table, keeps the best
// suggestion per category and orders the rest deterministically. A user with
// no usable trends gets the static default set — never an empty list.
func (e *Engine) Suggestions(ctx context.Context, userID uint64) ([]Suggestion, error) {
	results, err := e.Analyzer.Analyze(ctx, userID, e.WindowDays)
	if err != nil {
		return nil, err
	}

	best := make(map[Category]Suggestion)
	for _, r := range results {
		if r.Direction == DirectionFlat || r.Direction == DirectionInsufficient {
			continue
		}
		s := e.ruleFor(r)
		cur, ok := best[s.Category]
		if !ok || rank(s) > rank(cur) ||
			(rank(s) == rank(cur) && s.Trend.Magnitude > cur.Trend.Magnitude) {
			best[s.Category] = s
		}
	}

	if len(best) == 0 {
		return defaultSuggestions(), nil
	}

	out := make([]Suggestion, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sortSuggestions(out)
	return out, nil
}

func (e *Engine) ruleFor(r Result) Suggestion {
	trend := r
	s := Suggestion{
		Category: suggestionCategory(r.Category),
		Trend:    &trend,
	}

	switch {
	case r.Category == CategoryTaskStreak:
		s.Priority = PriorityHigh
		s.MessageKey = "tasks.streak_broken"
	case r.Direction == DirectionDeclining && safetyCategories[r.Category]:
		s.Priority = PriorityHigh
		s.MessageKey = string(r.Category) + ".declining"
	case r.Direction == DirectionImproving:
		// Positive reinforcement, except that a major shift in a safety
		// category is worth surfacing prominently.
		s.Priority = PriorityLow
		if safetyCategories[r.Category] && r.Magnitude >= e.Analyzer.Cfg.MajorShiftMagnitude {
			s.Priority = PriorityHigh
		}
		s.MessageKey = string(r.Category) + ".improving"
	default:
		s.Priority = PriorityMedium
		s.MessageKey = string(r.Category) + ".declining"
	}

	s.Message = messageFor(s.MessageKey)
	return s
}

func rank(s Suggestion) int { return priorityRank[s.Priority] }

// Ordering: priority desc, trend magnitude desc, category asc.
func sortSuggestions(out []Suggestion) {
	sort.Slice(out, func(i, j int) bool {
		if rank(out[i]) != rank(out[j]) {
			return rank(out[i]) > rank(out[j])
		}
		mi, mj := 0.0, 0.0
		if out[i].Trend != nil {
			mi = out[i].Trend.Magnitude
		}
		if out[j].Trend != nil {
			mj = out[j].Trend.Magnitude
		}
		if mi != mj {
			return mi > mj
		}
		return out[i].Category < out[j].Category
	})
}

func defaultSuggestions() []Suggestion {
	keys := []struct {
		cat Category
		pri Priority
		key string
	}{
		{CategoryHydration, PriorityMedium, "default.hydration"},
		{CategorySleep, PriorityMedium, "default.sleep"},
		{CategorySteps, PriorityLow, "default.steps"},
	}
	out := make([]Suggestion, 0, len(keys))
	for _, k := range keys {
		out = append(out, Suggestion{
			Category:   k.cat,
			Priority:   k.pri,
			MessageKey: k.key,
			Message:    messageFor(k.key),
		})
	}
	sortSuggestions(out)
	return out
}

var messages = map[string]string{
	"sleep.declining":     "Your sleep has been trending down. Try winding down a bit earlier this week.",
	"sleep.improving":     "Your sleep is trending up — keep the routine that got you here.",
	"mood.declining":      "Your mood scores have dipped recently. Consider a walk, a break, or reaching out to someone.",
	"mood.improving":      "Your mood has been on the rise. Nice.",
	"hydration.declining": "You've been drinking less water lately. Keep a bottle within reach.",
	"hydration.improving": "Hydration is up — good habit to hold on to.",
	"steps.declining":     "Your step count is slipping. A short daily walk adds up fast.",
	"steps.improving":     "You're moving more than before. Keep it going.",
	"caffeine.declining":  "Caffeine intake is creeping up. Try swapping one cup for water or tea.",
	"caffeine.improving":  "You've cut back on caffeine — your sleep will thank you.",
	"workout.declining":   "Workout time is down from your usual. Even a short session counts.",
	"workout.improving":   "Training volume is up. Solid work.",
	"tasks.declining":     "You're completing fewer of your daily tasks. Try trimming the list to the essentials.",
	"tasks.improving":     "Task completion is up. Momentum looks good.",
	"tasks.streak_broken": "You just broke a solid task streak. Get back on it today before the gap grows.",
	"supplements.declining": "Supplement adherence has slipped. Pair doses with an existing habit, like breakfast.",
	"supplements.improving": "You've been consistent with your supplements lately.",
	"tips.improving":        "You're checking more tips than before — curiosity pays off.",
	"achievements.improving": "You've been unlocking achievements at a faster clip.",
	"default.hydration":   "Log your water intake to start tracking hydration patterns.",
	"default.sleep":       "Log tonight's sleep to start building your sleep picture.",
	"default.steps":       "Record a daily step count and we'll watch the trend for you.",
}

func messageFor(key string) string {
	if m, ok := messages[key]; ok {
		return m
	}
	return "Keep logging daily — more data sharpens your trends."
}
