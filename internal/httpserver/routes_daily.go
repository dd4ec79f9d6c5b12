// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's game (creates or reuses session)
//   - POST /daily/word        → submit a word for today's daily game
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each user can play once per day (enforced by DB + in-memory session).
// The category of the day and the computer's random choices are
// deterministic per date + salt, so everyone faces the same opponent.

package httpserver

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avolkhin/wordchain/internal/daily"
	"github.com/avolkhin/wordchain/internal/game"
	"github.com/avolkhin/wordchain/internal/words"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // active sessions keyed by userID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession holds transient in-memory state for an in-progress daily game.
type dailySession struct {
	Game     *game.Game
	UserID   string
	Date     string
	Category string
	Rng      *rand.Rand // deterministic medium-policy source
	Finished bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/word", dd.handleWord)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// todayKey returns today's date key and the deterministic category of the day.
func (d *dailyServer) todayKey() (date, category string) {
	now := time.Now().UTC()
	cats := words.Categories()
	idx := daily.CategoryIndex(now, d.salt, len(cats))
	return daily.DateKey(now), cats[idx]
}

// evictStale drops sessions from previous dates so the map stays bounded
// to one day's worth of players. Caller must hold d.mu.
func (d *dailyServer) evictStale(today string) {
	for k, sess := range d.sessions {
		if sess.Date != today {
			delete(d.sessions, k)
		}
	}
}

// userIDWithAnon returns the authenticated user ID if logged in,
// otherwise ensures an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) string {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID   string `json:"gameId,omitempty"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Played   bool   `json:"played"`
}

// handleNew creates or reuses a daily session for the current date.
// - If user already has a DB row for today → return Played=true.
// - Otherwise create/reuse an in-memory session and return GameID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.userIDWithAnon(w, r)
	date, category := d.todayKey()

	// Check if already played (persisted in DB).
	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Category: category, Played: true})
		return
	}

	// Reuse or create session in memory.
	key := uid + "|" + date
	d.mu.Lock()
	d.evictStale(date)
	if sess, ok := d.sessions[key]; ok {
		d.mu.Unlock()
		_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: sess.Game.ID, Date: date, Category: category, Played: false})
		return
	}

	name := "Guest"
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		name = me.Username
	}
	human := game.NewHumanPlayer(name, name, "")
	cpu := game.NewComputerPlayer("Computer", game.DifficultyMedium)
	g, err := game.New(category, []*game.Player{human, cpu})
	if err != nil {
		d.mu.Unlock()
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	sess := &dailySession{
		Game:     g,
		UserID:   uid,
		Date:     date,
		Category: category,
		Rng:      rand.New(rand.NewSource(daily.Seed(time.Now(), d.salt))),
	}
	d.sessions[key] = sess
	d.mu.Unlock()

	_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: g.ID, Date: date, Category: category, Played: false})
}

// -----------------------------------------------------------------------------
// /daily/word

// dailyWordReq is the request payload for /daily/word.
type dailyWordReq struct {
	GameID string `json:"gameId"`
	Word   string `json:"word"`
}

// dailyWordRes is the response payload for /daily/word.
type dailyWordRes struct {
	Turns     []turnView   `json:"turns"`
	State     game.State   `json:"state"`
	LastWord  string       `json:"lastWord,omitempty"`
	WordCount int          `json:"wordCount"`
	Players   []playerView `json:"players"`
	Locked    bool         `json:"locked,omitempty"`
}

// handleWord resolves one exchange of today's daily game.
// - Rejects if no session or the session already finished.
// - Persists the result once the game reaches a terminal state.
func (d *dailyServer) handleWord(w http.ResponseWriter, r *http.Request) {
	uid := d.userIDWithAnon(w, r)

	var p dailyWordReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	date, _ := d.todayKey()

	// Find session.
	key := uid + "|" + date
	d.mu.Lock()
	sess, ok := d.sessions[key]
	d.mu.Unlock()
	if !ok || sess.Game.ID != p.GameID {
		http.Error(w, `{"error":"no_session"}`, http.StatusConflict)
		return
	}
	unlock := d.srv.lockGame(sess.Game.ID)
	defer unlock()
	if sess.Finished {
		_ = json.NewEncoder(w).Encode(dailyWordRes{State: sess.Game.State(), Locked: true})
		return
	}

	g := sess.Game
	if !g.Active() || g.CurrentPlayer().Kind != game.KindHuman {
		http.Error(w, `{"error":"not_your_turn"}`, http.StatusConflict)
		return
	}

	var turns []turnView
	human := g.CurrentPlayer()
	word, res := g.PlayTurn(game.HumanMover{Input: func() (string, error) { return p.Word, nil }})
	turns = append(turns, turnView{
		Player: human.Name, Kind: string(human.Kind),
		Word: word, Accepted: res.Accepted, Reason: res.Reason, Points: res.Points,
	})

	for g.Active() && g.CurrentPlayer().Kind == game.KindComputer {
		cpu := g.CurrentPlayer()
		cpuWord, cpuRes := g.PlayTurn(game.ComputerMover{
			Source:     wordSource,
			Difficulty: cpu.Difficulty,
			Rand:       sess.Rng,
		})
		turns = append(turns, turnView{
			Player: cpu.Name, Kind: string(cpu.Kind),
			Word: cpuWord, Accepted: cpuRes.Accepted, Reason: cpuRes.Reason, Points: cpuRes.Points,
		})
	}

	// Persist once and lock the session.
	if !g.Active() {
		d.mu.Lock()
		sess.Finished = true
		d.mu.Unlock()

		won := false
		if winner, ok := g.Winner(); ok {
			won = winner == g.Players()[0]
		}
		_ = d.store.InsertResult(r.Context(), daily.Result{
			UserID:   uid,
			Date:     date,
			Category: sess.Category,
			Score:    g.Players()[0].Score,
			Words:    g.WordCount(),
			Won:      won,
		})
		d.srv.gameLocks.Delete(g.ID)
	}

	_ = json.NewEncoder(w).Encode(dailyWordRes{
		Turns:     turns,
		State:     g.State(),
		LastWord:  g.LastWord(),
		WordCount: g.WordCount(),
		Players:   playerViews(g),
	})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _ = d.todayKey()
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
