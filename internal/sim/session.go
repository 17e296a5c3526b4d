package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/openborders/nationsim/internal/metrics"
)

// Rejections of invalid user actions. These are the only "errors" the
// simulation core produces; they leave state unchanged.
var (
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrNotRunning         = errors.New("simulation not running")
	ErrUnknownPolicy      = errors.New("unknown policy")
)

// maxBufferedEvents caps the session's event log; older entries are trimmed.
const maxBufferedEvents = 1000

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind starts dropping events rather than blocking a tick.
const subscriberBuffer = 64

// Recorder is an optional sink for run history. Failures are logged, never
// propagated: the engine does not depend on the archive succeeding.
type Recorder interface {
	RecordYear(sessionID string, n NationState) error
	RecordRun(sessionID string, n NationState, reason GameOverReason) error
}

// Session owns one run: its NationState, seeded RNG, event log, and
// subscribers. All mutation goes through the session's lock, which also
// serializes ticks (single-flight by construction).
type Session struct {
	ID   uuid.UUID
	Seed int64

	mu     sync.Mutex
	state  *NationState
	rng    *rand.Rand
	events []Event

	subs    map[int]chan Event
	nextSub int

	sched    *Scheduler
	recorder Recorder

	CreatedAt time.Time
}

// NewSession starts a new run at the given difficulty. The seed fully
// determines the run's random sequence; pass a recorded seed to replay.
func NewSession(d Difficulty, seed int64, rec Recorder) *Session {
	s := &Session{
		ID:        uuid.New(),
		Seed:      seed,
		state:     NewNationState(d),
		rng:       rand.New(rand.NewSource(seed)),
		subs:      make(map[int]chan Event),
		recorder:  rec,
		CreatedAt: time.Now(),
	}
	slog.Info("session started",
		"session", s.ID,
		"difficulty", d,
		"seed", seed,
		"budget", s.state.Budget,
	)
	return s
}

// AttachScheduler wires a scheduler that drives Tick at the given interval
// and starts it in a goroutine.
func (s *Session) AttachScheduler(interval time.Duration) {
	s.sched = NewScheduler(interval, s.Tick)
	go s.sched.Run()
}

// Scheduler returns the attached scheduler, or nil when the session is driven
// manually (tests).
func (s *Session) Scheduler() *Scheduler {
	return s.sched
}

// Tick advances the simulation one year. A no-op while not started or paused;
// the scheduler keeps firing, the engine ignores it.
func (s *Session) Tick() {
	s.mu.Lock()

	if !s.state.Started || s.state.Paused {
		s.mu.Unlock()
		return
	}

	events := Step(s.state, s.rng)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.publish(events)

	if s.recorder != nil {
		if err := s.recorder.RecordYear(s.ID.String(), snapshot); err != nil {
			slog.Error("year record failed", "session", s.ID, "error", err)
		}
	}

	for _, e := range events {
		if e.Kind != EventGameOver {
			continue
		}
		reason, _ := e.Meta["reason"].(string)
		slog.Info("game over",
			"session", s.ID,
			"reason", reason,
			"year", snapshot.Year,
			"score", snapshot.Score,
		)
		if s.recorder != nil {
			if err := s.recorder.RecordRun(s.ID.String(), snapshot, GameOverReason(reason)); err != nil {
				slog.Error("run record failed", "session", s.ID, "error", err)
			}
		}
	}

	slog.Debug("year complete",
		"session", s.ID,
		"year", snapshot.Year,
		"population", snapshot.Population,
		"gdp", snapshot.GDP,
		"happiness", fmt.Sprintf("%.1f", snapshot.Happiness),
		"unemployment", fmt.Sprintf("%.1f", snapshot.Unemployment),
		"budget", snapshot.Budget,
		"score", snapshot.Score,
	)
}

// TogglePolicy flips a policy's membership in the active set. Activating an
// unaffordable policy fails softly: the insufficient-funds notification is
// the only observable effect. The change takes effect from the next tick.
func (s *Session) TogglePolicy(id PolicyID) error {
	s.mu.Lock()

	p, ok := PolicyByID(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownPolicy, id)
	}
	if !s.state.Started || s.state.Paused {
		s.mu.Unlock()
		return ErrNotRunning
	}

	year := s.state.Year

	if s.state.ActivePolicies[id] {
		delete(s.state.ActivePolicies, id)
		s.mu.Unlock()
		metrics.PolicyTogglesTotal.WithLabelValues(string(id)).Inc()
		s.publish([]Event{notificationEvent(year, SeverityInfo,
			fmt.Sprintf("%s repealed", p.Name))})
		slog.Info("policy repealed", "session", s.ID, "policy", id)
		return nil
	}

	if p.UpfrontCost > s.state.Budget {
		budget := s.state.Budget
		s.mu.Unlock()
		s.publish([]Event{notificationEvent(year, SeverityWarning,
			fmt.Sprintf("Cannot enact %s: costs %s, treasury holds %s",
				p.Name, humanize.Comma(int64(p.UpfrontCost)), humanize.Comma(int64(budget))))})
		return fmt.Errorf("%w: %s costs %d", ErrInsufficientBudget, id, p.UpfrontCost)
	}

	s.state.ActivePolicies[id] = true
	s.state.Budget -= p.UpfrontCost
	s.mu.Unlock()

	metrics.PolicyTogglesTotal.WithLabelValues(string(id)).Inc()

	events := []Event{notificationEvent(year, SeverityInfo,
		fmt.Sprintf("%s enacted", p.Name))}
	if p.ImmigrantYield > 0 {
		events = append(events, spawnEvent(year, p, p.ImmigrantYield))
	}
	s.publish(events)

	slog.Info("policy enacted", "session", s.ID, "policy", id, "cost", p.UpfrontCost)
	return nil
}

// SetPaused suspends or resumes the tick cadence. Presentation animation is
// unaffected; only year advancement stops.
func (s *Session) SetPaused(paused bool) {
	s.mu.Lock()
	s.state.Paused = paused
	s.mu.Unlock()
	slog.Info("pause changed", "session", s.ID, "paused", paused)
}

// Restart discards the current run and reinitializes from scratch at the same
// difficulty and a fresh slice of the session's random stream. Nothing of the
// previous run survives.
func (s *Session) Restart() {
	s.mu.Lock()
	d := s.state.Difficulty
	s.state = NewNationState(d)
	s.events = nil
	s.mu.Unlock()
	slog.Info("session restarted", "session", s.ID, "difficulty", d)
}

// StateSnapshot returns a deep copy of the current state.
func (s *Session) StateSnapshot() NationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Events returns up to limit most recent events.
func (s *Session) Events(limit int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]Event, limit)
	copy(out, s.events[len(s.events)-limit:])
	return out
}

// Subscribe registers a consumer of the live event stream. The returned
// channel is closed by Close.
func (s *Session) Subscribe() (int, <-chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, subscriberBuffer)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber.
func (s *Session) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Close stops the scheduler and releases all subscribers.
func (s *Session) Close() {
	if s.sched != nil {
		s.sched.Stop()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// publish appends events to the log and fans them out. Sends never block: a
// full subscriber drops the event.
func (s *Session) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	s.events = append(s.events, events...)
	if len(s.events) > maxBufferedEvents {
		s.events = s.events[len(s.events)-maxBufferedEvents:]
	}
	chans := make([]chan Event, 0, len(s.subs))
	for _, ch := range s.subs {
		chans = append(chans, ch)
	}
	s.mu.Unlock()

	for _, e := range events {
		for _, ch := range chans {
			select {
			case ch <- e:
			default:
			}
		}
	}
}
