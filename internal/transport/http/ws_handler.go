package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/session"
)

// WSHandler upgrades clients to websockets and wires each connection to
// its own quiz session runner.
type WSHandler struct {
	registry *app.Registry
	source   session.QuestionSource
	stats    app.StatsStore
	boards   *app.Gateway
	log      *slog.Logger
	upgrader websocket.Upgrader

	// tickEvery overrides the countdown cadence in tests.
	tickEvery time.Duration
}

func NewWSHandler(registry *app.Registry, source session.QuestionSource, stats app.StatsStore, boards *app.Gateway, log *slog.Logger) *WSHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WSHandler{
		registry: registry,
		source:   source,
		stats:    stats,
		boards:   boards,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

type stateView struct {
	Screen string `json:"screen"`
	session.State
	Results *resultsView `json:"results,omitempty"`
}

// resultsView is attached to snapshots of a finished run.
type resultsView struct {
	Feedback          session.FeedbackBand `json:"feedback"`
	DailyRewardEarned bool                 `json:"dailyRewardEarned"`
}

func newStateView(s session.State) stateView {
	view := stateView{Screen: s.Screen().String(), State: s}
	if s.IsFinished {
		view.Results = &resultsView{
			Feedback:          s.Feedback(),
			DailyRewardEarned: s.DailyRewardEarned(),
		}
	}
	return view
}

type agePayload struct {
	Age domain.AgeGroup `json:"age"`
}

type difficultyPayload struct {
	Difficulty domain.Difficulty `json:"difficulty"`
}

type categoryPayload struct {
	CategoryID string `json:"categoryId"`
}

type optionPayload struct {
	Option string `json:"option"`
}

type saveScorePayload struct {
	Name string `json:"name"`
}

type postCommentPayload struct {
	UserName  string `json:"userName"`
	Text      string `json:"text"`
	MediaURL  string `json:"mediaUrl,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	FileName  string `json:"fileName,omitempty"`
}

// ServeWS runs one quiz session per connection. Client events drive the
// session state machine; every transition streams back a state snapshot,
// and timer ticks stream as separate cues.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		http.Error(w, "missing deviceId", http.StatusBadRequest)
		return
	}
	lang := domain.Language(r.URL.Query().Get("lang"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	runner := session.NewRunner(session.RunnerConfig{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		Language:  lang,
		Source:    h.source,
		Stats:     h.stats,
		Logger:    h.log,
		TickEvery: h.tickEvery,
	})
	h.registry.Add(runner)
	defer h.registry.Remove(runner.ID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-runner.Updates():
				if !ok {
					return
				}
				var msg outboundMessage[any]
				switch update.Kind {
				case session.UpdateTick:
					msg = outboundMessage[any]{Type: "tick", Payload: update.Tick}
				default:
					msg = outboundMessage[any]{Type: "state", Payload: newStateView(update.State)}
				}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "state", Payload: newStateView(runner.State())}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, runner, send, inbound)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, runner *session.Runner, send chan outboundMessage[any], inbound inboundMessage) {
	switch inbound.Type {
	case "start":
		runner.Start()
	case "daily":
		runner.StartDailyChallenge()
	case "dismissIntro":
		runner.DismissIntro()
	case "selectAge":
		var p agePayload
		if decode(send, inbound.Payload, &p) {
			runner.SelectAge(p.Age)
		}
	case "setDifficulty":
		var p difficultyPayload
		if decode(send, inbound.Payload, &p) {
			runner.SetDifficulty(p.Difficulty)
		}
	case "selectCategory":
		var p categoryPayload
		if !decode(send, inbound.Payload, &p) {
			return
		}
		cat, ok := domain.CategoryByID(p.CategoryID)
		if !ok {
			sendError(send, "unknown category", true)
			return
		}
		runner.SelectCategory(cat)
	case "selectOption":
		var p optionPayload
		if decode(send, inbound.Payload, &p) {
			runner.SelectOption(p.Option)
		}
	case "next":
		runner.Next()
	case "useHint":
		runner.UseHint()
	case "back":
		runner.Back()
	case "reset":
		runner.Reset()
	case "cycleLanguage":
		runner.CycleLanguage()
	case "toggleLeaderboard":
		runner.ToggleLeaderboard()
	case "toggleAbout":
		runner.ToggleAbout()
	case "openAcknowledgments":
		runner.OpenAcknowledgments()
	case "saveScore":
		h.saveScore(r, runner, send, inbound.Payload)
	case "postComment":
		h.postComment(r, runner, send, inbound.Payload)
	case "getLeaderboard":
		entries := h.boards.TopScores(r.Context(), app.LocalCacheCap)
		send <- outboundMessage[any]{Type: "leaderboard", Payload: entries}
	case "getComments":
		comments := h.boards.RecentComments(r.Context(), app.RecentCommentsLimit)
		send <- outboundMessage[any]{Type: "comments", Payload: comments}
	case "getStats":
		stats, err := h.stats.Stats(r.Context(), runner.DeviceID)
		if err != nil {
			h.log.Warn("stats read failed", "error", err)
		}
		send <- outboundMessage[any]{Type: "stats", Payload: stats}
	default:
		sendError(send, "unsupported message type", true)
	}
}

// saveScore persists the finished run under the given player name. The
// entry is built from the session's own state; clients cannot forge scores.
func (h *WSHandler) saveScore(r *http.Request, runner *session.Runner, send chan outboundMessage[any], payload json.RawMessage) {
	var p saveScorePayload
	if !decode(send, payload, &p) {
		return
	}
	state := runner.State()
	if !state.IsFinished || state.Category == nil {
		sendError(send, "no finished quiz to save", true)
		return
	}
	categoryName := state.Category.LocalizedName(state.Language)
	if state.IsDailyChallenge {
		categoryName = domain.DailyCategory().LocalizedName(state.Language)
	}
	entry, err := h.boards.SaveScore(r.Context(), domain.LeaderboardEntry{
		Name:       p.Name,
		Score:      state.Score,
		Total:      len(state.Questions),
		Category:   categoryName,
		Difficulty: state.Difficulty,
		Age:        state.Age,
	})
	// Remote failure leaves the save unconfirmed; the local copy is kept.
	send <- outboundMessage[any]{Type: "scoreSaved", Payload: map[string]any{
		"entry":     entry,
		"confirmed": err == nil,
	}}
}

func (h *WSHandler) postComment(r *http.Request, runner *session.Runner, send chan outboundMessage[any], payload json.RawMessage) {
	var p postCommentPayload
	if !decode(send, payload, &p) {
		return
	}
	state := runner.State()
	comment, err := h.boards.SaveComment(r.Context(), domain.CommunityComment{
		UserName:  p.UserName,
		Text:      p.Text,
		Lang:      state.Language,
		MediaURL:  p.MediaURL,
		MediaType: domain.MediaType(p.MediaType),
		FileName:  p.FileName,
	})
	if err != nil {
		// Recoverable: the client keeps the draft for retry.
		sendError(send, err.Error(), true)
		return
	}
	send <- outboundMessage[any]{Type: "commentPosted", Payload: comment}
}

func decode(send chan outboundMessage[any], payload json.RawMessage, dst any) bool {
	if err := json.Unmarshal(payload, dst); err != nil {
		sendError(send, "invalid payload", true)
		return false
	}
	return true
}

func sendError(send chan outboundMessage[any], message string, recoverable bool) {
	send <- outboundMessage[any]{Type: "error", Payload: errorPayload{
		Message:     message,
		Recoverable: recoverable,
	}}
}
