package session

import (
	"trivia-session-service/internal/domain"
)

// TimeUpSentinel is recorded as the selected option when the countdown
// expires. It never equals a real option, so it always scores incorrect.
const TimeUpSentinel = "__TIME_UP__"

// Screen is the tagged union of visible screens. Exactly one screen is
// derived from the session state at any time.
type Screen int

const (
	ScreenError Screen = iota
	ScreenLanding
	ScreenAcknowledgments
	ScreenAbout
	ScreenLeaderboard
	ScreenIntro
	ScreenAgeSelect
	ScreenCategorySelect
	ScreenResults
	ScreenActive
)

func (s Screen) String() string {
	switch s {
	case ScreenError:
		return "error"
	case ScreenLanding:
		return "landing"
	case ScreenAcknowledgments:
		return "acknowledgments"
	case ScreenAbout:
		return "about"
	case ScreenLeaderboard:
		return "leaderboard"
	case ScreenIntro:
		return "intro"
	case ScreenAgeSelect:
		return "ageSelect"
	case ScreenCategorySelect:
		return "categorySelect"
	case ScreenResults:
		return "results"
	case ScreenActive:
		return "active"
	}
	return "unknown"
}

// Card holds the per-question presentation state of the active question.
// A fresh Card (and timer) is issued whenever the question identity changes.
type Card struct {
	Selected        string `json:"selected"`
	ShowExplanation bool   `json:"showExplanation"`
	HintShown       bool   `json:"hintShown"`
	Timer           Timer  `json:"timer"`
}

// awaitingAnswer reports whether the question is still open for a first
// answer; the countdown only runs in this state.
func (c Card) awaitingAnswer() bool {
	return c.Selected == "" && !c.ShowExplanation
}

// midQuiz reports whether a question batch is in play. Overlays over an
// unanswered question do not pause the countdown, so Tick consults this
// rather than the derived screen.
func (s State) midQuiz() bool {
	return len(s.Questions) > 0 && !s.IsFinished
}

// State is the single source of truth driving screen selection.
type State struct {
	Language            domain.Language   `json:"language"`
	ShowLanding         bool              `json:"showLanding"`
	ShowIntro           bool              `json:"showIntro"`
	ShowAbout           bool              `json:"showAbout"`
	ShowAcknowledgments bool              `json:"showAcknowledgments"`
	ShowLeaderboard     bool              `json:"showLeaderboard"`
	Age                 domain.AgeGroup   `json:"age,omitempty"`
	Category            *domain.Category  `json:"category,omitempty"`
	Difficulty          domain.Difficulty `json:"difficulty"`
	Questions           []domain.Question `json:"questions"`
	CurrentIndex        int               `json:"currentIndex"`
	Score               int               `json:"score"`
	IsFinished          bool              `json:"isFinished"`
	IsLoading           bool              `json:"isLoading"`
	Err                 string            `json:"error,omitempty"`
	IsDailyChallenge    bool              `json:"isDailyChallenge"`
	HintUsedInQuiz      bool              `json:"hintUsedInQuiz"`
	Card                Card              `json:"card"`
}

// Screen derives the visible screen in fixed priority order, first match wins.
func (s State) Screen() Screen {
	switch {
	case s.Err != "":
		return ScreenError
	case s.ShowLanding:
		return ScreenLanding
	case s.ShowAcknowledgments:
		return ScreenAcknowledgments
	case s.ShowAbout:
		return ScreenAbout
	case s.ShowLeaderboard:
		return ScreenLeaderboard
	case s.ShowIntro:
		return ScreenIntro
	case s.Age == "":
		return ScreenAgeSelect
	case len(s.Questions) == 0 && !s.IsFinished:
		return ScreenCategorySelect
	case s.IsFinished:
		return ScreenResults
	default:
		return ScreenActive
	}
}

// FeedbackBand classifies a finished run's score for the results screen.
type FeedbackBand string

const (
	FeedbackKeepTrying FeedbackBand = "keepTrying"
	FeedbackGood       FeedbackBand = "good"
	FeedbackExcellent  FeedbackBand = "excellent"
)

// Feedback returns the results band: below 40% keep-trying, below 70% good,
// excellent otherwise.
func (s State) Feedback() FeedbackBand {
	if len(s.Questions) == 0 {
		return FeedbackKeepTrying
	}
	pct := float64(s.Score) / float64(len(s.Questions)) * 100
	switch {
	case pct < 40:
		return FeedbackKeepTrying
	case pct < 70:
		return FeedbackGood
	default:
		return FeedbackExcellent
	}
}

// DailyRewardEarned reports whether a finished daily challenge reached the
// reward score.
func (s State) DailyRewardEarned() bool {
	return s.IsFinished && s.IsDailyChallenge && s.Score >= domain.DailyRewardScore
}

// CurrentQuestion returns the question under the active card.
func (s State) CurrentQuestion() (domain.Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return domain.Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

func initialState() State {
	return State{
		Language:    domain.LangArabic,
		ShowLanding: true,
		Difficulty:  domain.DifficultyMedium,
	}
}

// Machine owns the session state and applies every transition atomically.
// It is not safe for concurrent use; the Runner serializes all callers.
type Machine struct {
	state State

	// fetchGen guards async question fetches: a completion is applied only
	// if no newer fetch or navigation superseded it.
	fetchGen uint64
}

func NewMachine() *Machine {
	return &Machine{state: initialState()}
}

// State returns a copy of the current session state.
func (m *Machine) State() State {
	return m.state
}

// bumpGen invalidates any in-flight fetch.
func (m *Machine) bumpGen() uint64 {
	m.fetchGen++
	return m.fetchGen
}

// Start moves landing → intro.
func (m *Machine) Start() {
	m.state.ShowLanding = false
	m.state.ShowIntro = true
	m.state.IsDailyChallenge = false
}

// DismissIntro closes the intro, landing on age selection.
func (m *Machine) DismissIntro() {
	m.state.ShowIntro = false
}

// SelectAge records the chosen age group; the next derived screen is
// category selection.
func (m *Machine) SelectAge(age domain.AgeGroup) {
	m.state.Age = age
}

// SetDifficulty updates the difficulty without refetching.
func (m *Machine) SetDifficulty(d domain.Difficulty) {
	m.state.Difficulty = d
}

// BeginSelectCategory starts a question fetch for the category. It is a
// no-op while a fetch is in flight or before an age is chosen; the
// returned generation must be echoed back through ResolveFetch.
func (m *Machine) BeginSelectCategory(cat domain.Category) (uint64, domain.QuestionRequest, bool) {
	if m.state.Age == "" || m.state.IsLoading {
		return 0, domain.QuestionRequest{}, false
	}
	c := cat
	m.state.Category = &c
	m.state.IsLoading = true
	m.state.Err = ""
	return m.bumpGen(), domain.QuestionRequest{
		Age:        m.state.Age,
		Category:   cat,
		Language:   m.state.Language,
		Difficulty: m.state.Difficulty,
	}, true
}

// BeginDailyChallenge starts the fixed-difficulty daily variant. The age
// defaults to adult when none was chosen yet; difficulty is forced hard.
func (m *Machine) BeginDailyChallenge() (uint64, domain.QuestionRequest, bool) {
	if m.state.IsLoading {
		return 0, domain.QuestionRequest{}, false
	}
	age := m.state.Age
	if age == "" {
		age = domain.AgeAdult
	}
	daily := domain.DailyCategory()
	m.state.ShowLanding = false
	m.state.ShowIntro = false
	m.state.Age = age
	m.state.Category = &daily
	m.state.IsDailyChallenge = true
	m.state.IsLoading = true
	m.state.Err = ""
	return m.bumpGen(), domain.QuestionRequest{
		Age:        age,
		Category:   daily,
		Language:   m.state.Language,
		Difficulty: domain.DifficultyHard,
	}, true
}

// ResolveFetch applies a question-fetch completion. Completions carrying a
// stale generation are discarded; returns whether the result was applied.
func (m *Machine) ResolveFetch(gen uint64, questions []domain.Question, err error) bool {
	if gen != m.fetchGen {
		return false
	}
	if err != nil {
		m.state.IsLoading = false
		if m.state.IsDailyChallenge {
			m.state.IsDailyChallenge = false
		} else {
			m.state.Category = nil
		}
		m.state.Err = err.Error()
		return true
	}
	m.state.Questions = questions
	m.state.IsLoading = false
	m.state.CurrentIndex = 0
	m.state.Score = 0
	m.state.IsFinished = false
	m.state.Card = Card{Timer: NewTimer()}
	return true
}

// SelectOption records the first answer for the active question. The timer
// freezes at its current value and the explanation is revealed.
func (m *Machine) SelectOption(option string) bool {
	if m.state.Screen() != ScreenActive || !m.state.Card.awaitingAnswer() {
		return false
	}
	m.state.Card.Selected = option
	m.state.Card.Timer.Freeze()
	m.state.Card.ShowExplanation = true
	return true
}

// Tick consumes one time unit of the active question's countdown. Expiry is
// treated identically to selecting a non-existent option.
func (m *Machine) Tick() (TickCue, bool) {
	if !m.state.midQuiz() || !m.state.Card.awaitingAnswer() {
		return TickCue{}, false
	}
	cue, ok := m.state.Card.Timer.Tick()
	if !ok {
		return TickCue{}, false
	}
	if cue.Expired {
		m.state.Card.Selected = TimeUpSentinel
		m.state.Card.ShowExplanation = true
	}
	return cue, true
}

// UseHint reveals the hint for the current question. At most one hint per
// quiz run; blocked once an answer exists.
func (m *Machine) UseHint() bool {
	if m.state.Screen() != ScreenActive || m.state.HintUsedInQuiz || !m.state.Card.awaitingAnswer() {
		return false
	}
	m.state.HintUsedInQuiz = true
	m.state.Card.HintShown = true
	return true
}

// Next advances past an answered question, scoring the recorded selection.
func (m *Machine) Next() bool {
	if m.state.Screen() != ScreenActive || !m.state.Card.ShowExplanation {
		return false
	}
	q, ok := m.state.CurrentQuestion()
	if !ok {
		return false
	}
	m.Answer(m.state.Card.Selected == q.CorrectAnswer)
	return true
}

// Answer scores one question and advances the index, finishing the run when
// the batch is exhausted. A fresh card and timer are issued otherwise.
func (m *Machine) Answer(isCorrect bool) {
	if isCorrect {
		m.state.Score++
	}
	m.state.CurrentIndex++
	if m.state.CurrentIndex >= len(m.state.Questions) {
		m.state.IsFinished = true
		return
	}
	m.state.Card = Card{Timer: NewTimer()}
}

// ToggleLeaderboard shows or hides the leaderboard overlay.
func (m *Machine) ToggleLeaderboard() {
	m.state.ShowLeaderboard = !m.state.ShowLeaderboard
}

// ToggleAbout shows or hides the about overlay, closing acknowledgments.
func (m *Machine) ToggleAbout() {
	m.state.ShowAbout = !m.state.ShowAbout
	m.state.ShowAcknowledgments = false
}

// OpenAcknowledgments switches the about overlay to acknowledgments.
func (m *Machine) OpenAcknowledgments() {
	m.state.ShowAcknowledgments = true
	m.state.ShowAbout = false
}

// Back is a single-level undo over the conceptual navigation stack,
// evaluated in fixed priority order. Applying it on the initial state is
// a no-op.
func (m *Machine) Back() {
	s := &m.state
	switch {
	case s.ShowAcknowledgments:
		s.ShowAcknowledgments = false
		s.ShowAbout = true
	case s.ShowAbout:
		s.ShowAbout = false
	case s.ShowLeaderboard:
		s.ShowLeaderboard = false
	case s.IsFinished:
		m.Reset()
	case len(s.Questions) > 0:
		m.bumpGen()
		s.Questions = nil
		s.CurrentIndex = 0
		s.Score = 0
		s.IsDailyChallenge = false
		s.IsLoading = false
		s.Card = Card{}
	case s.Category != nil:
		// Also invalidates a pending fetch, whose discarded completion
		// would otherwise leave the loading flag stuck.
		m.bumpGen()
		s.Category = nil
		s.IsDailyChallenge = false
		s.IsLoading = false
	case s.Age != "":
		s.Age = ""
		s.IsDailyChallenge = false
	case s.ShowIntro:
		s.ShowIntro = false
		s.ShowLanding = true
	case !s.ShowLanding:
		// Age selection: step back to the intro.
		s.ShowIntro = true
	}
}

// Reset returns every field to its initial value; only the language survives.
func (m *Machine) Reset() {
	lang := m.state.Language
	m.bumpGen()
	m.state = initialState()
	m.state.Language = lang
}

// CycleLanguage advances through the fixed language ring.
func (m *Machine) CycleLanguage() {
	m.state.Language = m.state.Language.Next()
}
