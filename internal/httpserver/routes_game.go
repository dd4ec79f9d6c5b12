// internal/httpserver/routes_game.go
//
// HTTP routes for free-play word-chain games.
// Endpoints under optional auth (guests welcome):
//   - POST /game/new    → start a game vs. the computer
//   - POST /game/word   → submit the human's word; the computer replies in
//                         the same exchange until it is the human's turn
//                         again or the game ends
//   - GET  /game/{id}   → current state view
//   - POST /game/save   → persist a snapshot of an in-progress game
//   - POST /game/load   → restore a snapshot into a fresh session
//   - GET  /game/saves  → list the caller's saved games
//
// Sessions are held in memory for active play; finished games and user
// stats are persisted to SQLite.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/avolkhin/wordchain/internal/game"
	"github.com/avolkhin/wordchain/internal/words"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/word", s.handleWord)
		r.Get("/{id}", s.handleGameState)
		r.Post("/save", s.handleSaveGame)
		r.Post("/load", s.handleLoadGame)
		r.Get("/saves", s.handleListSaves)
	})
}

// wordSource adapts the words package to the computer mover's lookup shape.
func wordSource(category string) []string {
	l, _ := words.List(category)
	return l
}

// ownerOf returns the identity used for DB rows: the authenticated user,
// or the anonymous cookie id for guests.
func (s *Server) ownerOf(w http.ResponseWriter, r *http.Request) (userID, anonID string) {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID, ""
	}
	return "", s.ensureAnonID(w, r)
}

// ------------------------------ /game/new ----------------------------------

type newGameReq struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"` // easy|medium|hard, default medium
	Name       string `json:"name"`       // guest display name, optional
}
type newGameRes struct {
	GameID   string       `json:"gameId"`
	Category string       `json:"category"`
	Players  []playerView `json:"players"`
	Turn     string       `json:"turn"` // name of the player to move
}

// handleNewGame starts a human-vs-computer session and records an owner
// row for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	if !words.IsCategory(req.Category) {
		http.Error(w, `{"error":"unknown_category"}`, http.StatusBadRequest)
		return
	}
	diff := game.ParseDifficulty(req.Difficulty)

	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	name, username, email := req.Name, "", ""
	if me != nil {
		name, username = me.Username, me.Username
		if u, err := s.findUserByID(me.ID); err == nil {
			email = u.Email
		}
	}
	if name == "" {
		name = "Guest"
	}

	human := game.NewHumanPlayer(name, username, email)
	cpu := game.NewComputerPlayer("Computer", diff)
	g, err := game.New(req.Category, []*game.Player{human, cpu})
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	// Persist owner row (best effort, non-fatal if it fails).
	userID, anonID := s.ownerOf(w, r)
	s.insertGameRow(g, diff, userID, anonID)

	_ = json.NewEncoder(w).Encode(newGameRes{
		GameID:   g.ID,
		Category: g.Category,
		Players:  playerViews(g),
		Turn:     g.CurrentPlayer().Name,
	})
}

// insertGameRow records an active games row for the owner so history
// queries and finishGame have something to close out. Best effort.
func (s *Server) insertGameRow(g *game.Game, diff game.Difficulty, userID, anonID string) {
	ownerCol, ownerArg := "anonymous_id", anonID
	if userID != "" {
		ownerCol, ownerArg = "user_id", userID
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec(`INSERT INTO games (id, `+ownerCol+`, category, difficulty, status, score, words, started_at)
	                        VALUES (?,?,?,?,?,0,0,?)`, g.ID, ownerArg, g.Category, string(diff), "active", now); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
}

// ------------------------------ /game/word ---------------------------------

type wordReq struct {
	GameID string `json:"gameId"`
	Word   string `json:"word"`
}

// turnView describes one resolved turn in the response.
type turnView struct {
	Player   string      `json:"player"`
	Kind     string      `json:"kind"`
	Word     string      `json:"word,omitempty"`
	Accepted bool        `json:"accepted"`
	Reason   game.Reason `json:"reason,omitempty"`
	Points   int         `json:"points,omitempty"`
}

type wordRes struct {
	Turns     []turnView   `json:"turns"`
	State     game.State   `json:"state"`
	LastWord  string       `json:"lastWord,omitempty"`
	WordCount int          `json:"wordCount"`
	Players   []playerView `json:"players"`
	Winner    string       `json:"winner,omitempty"`
}

// handleWord resolves the human's turn, then lets the computer take its
// turns until play returns to the human or the game ends.
func (s *Server) handleWord(w http.ResponseWriter, r *http.Request) {
	var req wordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	g, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	unlock := s.lockGame(g.ID)
	defer unlock()
	if !g.Active() {
		http.Error(w, `{"error":"terminal"}`, http.StatusConflict)
		return
	}
	if g.CurrentPlayer().Kind != game.KindHuman {
		http.Error(w, `{"error":"not_your_turn"}`, http.StatusConflict)
		return
	}

	var turns []turnView

	// The request body is the human's input collaborator for this turn.
	human := g.CurrentPlayer()
	word, res := g.PlayTurn(game.HumanMover{Input: func() (string, error) { return req.Word, nil }})
	turns = append(turns, turnView{
		Player: human.Name, Kind: string(human.Kind),
		Word: word, Accepted: res.Accepted, Reason: res.Reason, Points: res.Points,
	})

	turns = append(turns, s.runComputerTurns(g)...)

	if err := s.store.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	if !g.Active() {
		s.finishGame(w, r, g)
		s.gameLocks.Delete(g.ID) // terminal sessions take no more writes
	}

	out := wordRes{
		Turns:     turns,
		State:     g.State(),
		LastWord:  g.LastWord(),
		WordCount: g.WordCount(),
		Players:   playerViews(g),
	}
	if winner, ok := g.Winner(); ok {
		out.Winner = winner.Name
	}
	_ = json.NewEncoder(w).Encode(out)
}

// runComputerTurns plays computer turns until a human is up or the game
// is over. The per-move pacing delay of the console original is cosmetic
// and has no place on a request path.
func (s *Server) runComputerTurns(g *game.Game) []turnView {
	var turns []turnView
	for g.Active() && g.CurrentPlayer().Kind == game.KindComputer {
		cpu := g.CurrentPlayer()
		word, res := g.PlayTurn(game.ComputerMover{
			Source:     wordSource,
			Difficulty: cpu.Difficulty,
		})
		turns = append(turns, turnView{
			Player: cpu.Name, Kind: string(cpu.Kind),
			Word: word, Accepted: res.Accepted, Reason: res.Reason, Points: res.Points,
		})
	}
	return turns
}

// finishGame persists the outcome: the games row and, for logged-in
// owners, the aggregate user stats. Best effort — play already ended.
func (s *Server) finishGame(w http.ResponseWriter, r *http.Request, g *game.Game) {
	userID, anonID := s.ownerOf(w, r)
	ownerClause, ownerArg := `anonymous_id=?`, any(anonID)
	if userID != "" {
		ownerClause, ownerArg = `user_id=?`, any(userID)
	}

	human := g.Players()[0]
	won := false
	if winner, ok := g.Winner(); ok {
		won = winner == human
	}

	tx, err := s.db.Begin()
	if err != nil {
		log.Warn().Err(err).Msg("finish game tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE games SET status=?, score=?, words=?, last_word=?, finished_at=?
	                      WHERE id=? AND `+ownerClause,
		string(g.State()), human.Score, g.WordCount(), g.LastWord(),
		time.Now().UTC().Format(time.RFC3339), g.ID, ownerArg); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("finish game row")
	}
	if userID != "" {
		if err := s.bumpStats(tx, userID, won); err != nil {
			log.Warn().Err(err).Str("user", userID).Msg("bump stats")
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("finish game commit")
	}

	for _, rep := range g.Reports() {
		log.Info().
			Str("player", rep.PlayerRef).
			Str("category", rep.Category).
			Str("lastWord", rep.LastWord).
			Int("score", rep.FinalScore).
			Bool("winner", rep.IsWinner).
			Msg("game finished")
	}
}

// ------------------------------ /game/{id} ---------------------------------

type playerView struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Score int    `json:"score"`
}

type stateRes struct {
	GameID    string       `json:"gameId"`
	Category  string       `json:"category"`
	State     game.State   `json:"state"`
	LastWord  string       `json:"lastWord,omitempty"`
	UsedWords []string     `json:"usedWords"`
	WordCount int          `json:"wordCount"`
	Players   []playerView `json:"players"`
	Turn      string       `json:"turn,omitempty"`
	Winner    string       `json:"winner,omitempty"`
}

func playerViews(g *game.Game) []playerView {
	out := make([]playerView, 0, len(g.Players()))
	for _, p := range g.Players() {
		out = append(out, playerView{Name: p.Name, Kind: string(p.Kind), Score: p.Score})
	}
	return out
}

func stateView(g *game.Game) stateRes {
	out := stateRes{
		GameID:    g.ID,
		Category:  g.Category,
		State:     g.State(),
		LastWord:  g.LastWord(),
		UsedWords: g.UsedWords(),
		WordCount: g.WordCount(),
		Players:   playerViews(g),
	}
	if g.Active() {
		out.Turn = g.CurrentPlayer().Name
	} else if winner, ok := g.Winner(); ok {
		out.Winner = winner.Name
	}
	return out
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	unlock := s.lockGame(g.ID)
	defer unlock()
	_ = json.NewEncoder(w).Encode(stateView(g))
}

// ------------------------------ save / load --------------------------------

type saveReq struct {
	GameID string `json:"gameId"`
	Name   string `json:"name"` // save slot name; "default" when empty
}
type saveRes struct {
	SaveID string `json:"saveId"`
	Name   string `json:"name"`
}

// handleSaveGame snapshots an in-progress session into the saves table.
// One row per (owner, name): saving to the same slot overwrites it.
func (s *Server) handleSaveGame(w http.ResponseWriter, r *http.Request) {
	var req saveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		req.Name = "default"
	}
	g, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	unlock := s.lockGame(g.ID)
	defer unlock()

	userID, anonID := s.ownerOf(w, r)
	ref := userID
	if ref == "" {
		ref = anonID
	}
	data, err := json.Marshal(g.Snapshot(ref))
	if err != nil {
		http.Error(w, `{"error":"encode_failed"}`, http.StatusInternalServerError)
		return
	}

	id := genID()
	now := time.Now().UTC().Format(time.RFC3339)
	ownerCol, ownerArg := "anonymous_id", anonID
	if userID != "" {
		ownerCol, ownerArg = "user_id", userID
	}

	// One slot per (owner, name): replace any previous save atomically.
	tx, err := s.db.Begin()
	if err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM saves WHERE `+ownerCol+`=? AND name=?`, ownerArg, req.Name); err != nil {
		log.Error().Err(err).Msg("replace save")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	if _, err := tx.Exec(`INSERT INTO saves (id, `+ownerCol+`, name, snapshot, created_at)
	                      VALUES (?,?,?,?,?)`, id, ownerArg, req.Name, string(data), now); err != nil {
		log.Error().Err(err).Msg("insert save")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(saveRes{SaveID: id, Name: req.Name})
}

type loadReq struct {
	Name string `json:"name"` // save slot name; "default" when empty
}

// handleLoadGame restores a snapshot into a fresh in-memory session.
// Load is all-or-nothing: a missing or malformed snapshot reports a load
// failure and no session is created.
func (s *Server) handleLoadGame(w http.ResponseWriter, r *http.Request) {
	var req loadReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Name == "" {
		req.Name = "default"
	}

	userID, anonID := s.ownerOf(w, r)
	ownerClause, ownerArg := `anonymous_id=?`, any(anonID)
	if userID != "" {
		ownerClause, ownerArg = `user_id=?`, any(userID)
	}

	var raw string
	if err := s.db.QueryRow(`SELECT snapshot FROM saves WHERE `+ownerClause+` AND name=?`,
		ownerArg, req.Name).Scan(&raw); err != nil {
		http.Error(w, `{"error":"save_not_found"}`, http.StatusNotFound)
		return
	}

	var snap game.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		http.Error(w, `{"error":"load_failed"}`, http.StatusUnprocessableEntity)
		return
	}
	g, err := game.Restore(snap)
	if err != nil {
		http.Error(w, `{"error":"load_failed"}`, http.StatusUnprocessableEntity)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	// The restored session has a fresh game ID; give it its own games row
	// so it shows up in history once it finishes. A snapshot that was
	// already terminal was recorded when it originally ended.
	if g.Active() {
		diff := game.DifficultyMedium
		for _, p := range g.Players() {
			if p.Kind == game.KindComputer {
				diff = p.Difficulty
				break
			}
		}
		s.insertGameRow(g, diff, userID, anonID)
	}
	_ = json.NewEncoder(w).Encode(stateView(g))
}

// handleListSaves lists the caller's save slots, newest first.
func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	userID, anonID := s.ownerOf(w, r)
	ownerClause, ownerArg := `anonymous_id=?`, any(anonID)
	if userID != "" {
		ownerClause, ownerArg = `user_id=?`, any(userID)
	}
	rows, err := s.db.Query(`SELECT id, name, created_at FROM saves WHERE `+ownerClause+` ORDER BY created_at DESC`, ownerArg)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	type saveRow struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		CreatedAt string `json:"createdAt"`
	}
	out := []saveRow{}
	for rows.Next() {
		var sr saveRow
		if err := rows.Scan(&sr.ID, &sr.Name, &sr.CreatedAt); err == nil {
			out = append(out, sr)
		}
	}
	_ = json.NewEncoder(w).Encode(out)
}
