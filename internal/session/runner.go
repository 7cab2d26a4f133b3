package session

import (
	"context"
	"log/slog"
	"time"

	"trivia-session-service/internal/domain"
)

// QuestionSource fetches one batch of questions for a session.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error)
}

// StatsRecorder accumulates lifetime play statistics per device.
type StatsRecorder interface {
	RecordGame(ctx context.Context, deviceID string, correct, total int, isDaily bool) (domain.UserStats, error)
}

// UpdateKind discriminates runner updates.
type UpdateKind string

const (
	UpdateState UpdateKind = "state"
	UpdateTick  UpdateKind = "tick"
)

// Update is one event published to the session's subscriber.
type Update struct {
	Kind  UpdateKind
	State State
	Tick  TickCue
}

// Runner owns one session: it serializes user events, timer ticks and fetch
// completions through a single goroutine, so transitions never interleave.
type Runner struct {
	ID       string
	DeviceID string

	machine *Machine
	source  QuestionSource
	stats   StatsRecorder
	log     *slog.Logger

	tickEvery time.Duration
	commands  chan func()
	updates   chan Update
	done      chan struct{}
	stopped   chan struct{}

	statsRecorded bool
}

// RunnerConfig wires a runner's collaborators.
type RunnerConfig struct {
	ID        string
	DeviceID  string
	Language  domain.Language
	Source    QuestionSource
	Stats     StatsRecorder
	Logger    *slog.Logger
	TickEvery time.Duration // defaults to one second
}

// NewRunner builds a runner and starts its event loop.
func NewRunner(cfg RunnerConfig) *Runner {
	machine := NewMachine()
	if cfg.Language != "" {
		machine.state.Language = cfg.Language
	}
	if cfg.TickEvery <= 0 {
		cfg.TickEvery = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	r := &Runner{
		ID:        cfg.ID,
		DeviceID:  cfg.DeviceID,
		machine:   machine,
		source:    cfg.Source,
		stats:     cfg.Stats,
		log:       cfg.Logger.With("session", cfg.ID),
		tickEvery: cfg.TickEvery,
		commands:  make(chan func(), 16),
		updates:   make(chan Update, 16),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go r.loop()
	return r
}

// Updates is the stream of state snapshots and tick cues for this session.
func (r *Runner) Updates() <-chan Update {
	return r.updates
}

// Stop terminates the event loop. Safe to call once.
func (r *Runner) Stop() {
	close(r.done)
	<-r.stopped
}

func (r *Runner) loop() {
	ticker := time.NewTicker(r.tickEvery)
	defer ticker.Stop()
	defer close(r.stopped)
	defer close(r.updates)

	for {
		select {
		case <-r.done:
			return
		case op := <-r.commands:
			op()
			r.publishState()
		case <-ticker.C:
			cue, ok := r.machine.Tick()
			if !ok {
				continue
			}
			r.publish(Update{Kind: UpdateTick, Tick: cue})
			if cue.Expired {
				// Expiry reveals the explanation; push the new state too.
				r.publishState()
			}
		}
	}
}

// publish delivers an update without blocking; when the subscriber lags,
// the oldest buffered update is dropped in its favor (it is stale anyway).
func (r *Runner) publish(u Update) {
	select {
	case r.updates <- u:
	default:
		select {
		case <-r.updates:
		default:
		}
		select {
		case r.updates <- u:
		default:
		}
	}
}

func (r *Runner) publishState() {
	state := r.machine.State()
	if state.IsFinished && !r.statsRecorded {
		r.statsRecorded = true
		r.recordGame(state)
	}
	if !state.IsFinished {
		r.statsRecorded = false
	}
	r.publish(Update{Kind: UpdateState, State: state})
}

// recordGame runs the single per-session stats update at results time.
func (r *Runner) recordGame(state State) {
	if r.stats == nil || r.DeviceID == "" {
		return
	}
	score, total, daily := state.Score, len(state.Questions), state.IsDailyChallenge
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := r.stats.RecordGame(ctx, r.DeviceID, score, total, daily); err != nil {
			r.log.Warn("record game stats failed", "error", err)
		}
	}()
}

// do posts an operation to the event loop. Operations posted after Stop are
// discarded.
func (r *Runner) do(op func()) {
	select {
	case r.commands <- op:
	case <-r.done:
	}
}

// State reads a consistent snapshot through the event loop.
func (r *Runner) State() State {
	reply := make(chan State, 1)
	r.do(func() { reply <- r.machine.State() })
	select {
	case s := <-reply:
		return s
	case <-r.done:
		return r.machine.State()
	}
}

func (r *Runner) Start()         { r.do(r.machine.Start) }
func (r *Runner) DismissIntro()  { r.do(r.machine.DismissIntro) }
func (r *Runner) Back()          { r.do(r.machine.Back) }
func (r *Runner) Reset()         { r.do(r.machine.Reset) }
func (r *Runner) CycleLanguage() { r.do(r.machine.CycleLanguage) }
func (r *Runner) Next()          { r.do(func() { r.machine.Next() }) }
func (r *Runner) UseHint()       { r.do(func() { r.machine.UseHint() }) }

func (r *Runner) ToggleLeaderboard()   { r.do(r.machine.ToggleLeaderboard) }
func (r *Runner) ToggleAbout()         { r.do(r.machine.ToggleAbout) }
func (r *Runner) OpenAcknowledgments() { r.do(r.machine.OpenAcknowledgments) }

func (r *Runner) SelectAge(age domain.AgeGroup) {
	r.do(func() { r.machine.SelectAge(age) })
}

func (r *Runner) SetDifficulty(d domain.Difficulty) {
	r.do(func() { r.machine.SetDifficulty(d) })
}

func (r *Runner) SelectOption(option string) {
	r.do(func() { r.machine.SelectOption(option) })
}

// SelectCategory begins an asynchronous question fetch; its single
// completion is routed back through the event loop carrying the fetch
// generation, so a response arriving after navigation is dropped.
func (r *Runner) SelectCategory(cat domain.Category) {
	r.do(func() {
		gen, req, ok := r.machine.BeginSelectCategory(cat)
		if !ok {
			return
		}
		r.fetch(gen, req)
	})
}

// StartDailyChallenge begins the fixed-difficulty daily variant.
func (r *Runner) StartDailyChallenge() {
	r.do(func() {
		gen, req, ok := r.machine.BeginDailyChallenge()
		if !ok {
			return
		}
		r.fetch(gen, req)
	})
}

func (r *Runner) fetch(gen uint64, req domain.QuestionRequest) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		questions, err := r.source.FetchQuestions(ctx, req)
		if err != nil {
			r.log.Warn("question fetch failed",
				"category", req.Category.ID, "lang", req.Language, "error", err)
		}
		r.do(func() {
			if !r.machine.ResolveFetch(gen, questions, err) {
				r.log.Debug("dropped stale fetch result", "gen", gen)
			}
		})
	}()
}
