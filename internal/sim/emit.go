package sim

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// EventKind classifies an outbound event for the presentation layer.
type EventKind string

const (
	EventSpawnImmigrants     EventKind = "spawn_immigrants"
	EventNotification        EventKind = "notification"
	EventAchievementUnlocked EventKind = "achievement_unlocked"
	EventYearSummary         EventKind = "year_summary"
	EventGameOver            EventKind = "game_over"
)

// Severity hints how the presentation layer should render a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Event is one outbound message to the presentation layer. The engine makes
// no assumption about how these render; Meta carries the typed payload.
type Event struct {
	Year     int            `json:"year"`
	Kind     EventKind      `json:"kind"`
	Text     string         `json:"text"`
	Severity Severity       `json:"severity,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

func spawnEvent(year int, p Policy, count int) Event {
	return Event{
		Year:     year,
		Kind:     EventSpawnImmigrants,
		Text:     fmt.Sprintf("%d immigrants arrive under %s", count, p.Name),
		Severity: SeverityInfo,
		Meta: map[string]any{
			"policy": string(p.ID),
			"count":  count,
		},
	}
}

func notificationEvent(year int, sev Severity, text string) Event {
	return Event{
		Year:     year,
		Kind:     EventNotification,
		Text:     text,
		Severity: sev,
	}
}

func achievementEvent(year int, a Achievement) Event {
	return Event{
		Year:     year,
		Kind:     EventAchievementUnlocked,
		Text:     fmt.Sprintf("Achievement unlocked: %s", a.Label),
		Severity: SeverityInfo,
		Meta: map[string]any{
			"id":    string(a.ID),
			"label": a.Label,
		},
	}
}

func yearSummaryEvent(n *NationState, d Deltas) Event {
	return Event{
		Year: n.Year,
		Kind: EventYearSummary,
		Text: fmt.Sprintf("Year %d: population %s (%+d), GDP %s (%+d), happiness %.0f, unemployment %.1f%%, budget %s",
			n.Year,
			humanize.Comma(int64(n.Population)), d.Population,
			humanize.Comma(int64(n.GDP)), d.GDP,
			n.Happiness, n.Unemployment,
			humanize.Comma(int64(n.Budget))),
		Severity: SeverityInfo,
		Meta: map[string]any{
			"deltas": d,
		},
	}
}

func gameOverEvent(n *NationState, reason GameOverReason) Event {
	return Event{
		Year:     n.Year,
		Kind:     EventGameOver,
		Text:     gameOverText(n, reason),
		Severity: SeverityDanger,
		Meta: map[string]any{
			"reason":      string(reason),
			"final_state": n.Clone(),
		},
	}
}

func gameOverText(n *NationState, reason GameOverReason) string {
	years := n.Year - EpochYear
	switch reason {
	case ReasonUnhappiness:
		return fmt.Sprintf("The nation collapses in unrest after %d years: happiness has hit zero.", years)
	case ReasonEconomicCollapse:
		return fmt.Sprintf("Economic collapse after %d years: unemployment reached %.0f%%.", years, n.Unemployment)
	case ReasonBankruptcy:
		return fmt.Sprintf("The treasury is bankrupt after %d years (budget %s).", years, humanize.Comma(int64(n.Budget)))
	case ReasonPopulationCrisis:
		return fmt.Sprintf("Population crisis after %d years: only %s people remain.", years, humanize.Comma(int64(n.Population)))
	}
	return fmt.Sprintf("Game over after %d years.", years)
}
