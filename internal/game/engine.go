// internal/game/engine.go
//
// Core state machine for a single word-chain session.
// Responsibilities:
//   - Enforce turn legality: empty/too-short words, duplicates, and the
//     chain rule (first letter must match the previous word's last letter).
//   - Track score, the used-word set, and the skip counter.
//   - Decide termination: win at WinWordCount accepted words, loss after
//     MaxSkippedTurns consecutive skips. Win is checked first.
//
// Notes:
//   - All comparison happens on canonical (case-folded) forms; original
//     casing is kept for display and snapshots.
//   - The machine is strictly sequential: Submit and AdvanceTurn are called
//     from a single turn loop, never concurrently.
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// Game holds the state of a single session.
type Game struct {
	ID       string
	Category string

	used      map[string]struct{} // canonical forms
	usedOrder []string            // original casing, acceptance order
	lastWord  string              // original casing of the last accepted word
	lastCanon string              // canonical form of lastWord
	state     State
	skipped   int // consecutive rejected/empty turns
	round     int // accepted words so far
	players   []*Player
	turn      int // index into players
	winner    int // index of the winner once terminal, -1 before
}

// New starts a fresh game for the given category and players.
// At least one player is required; fewer is a caller bug, not a game event.
func New(category string, players []*Player) (*Game, error) {
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}
	return &Game{
		ID:       randomID(),
		Category: category,
		used:     make(map[string]struct{}),
		state:    StateActive,
		players:  players,
		winner:   -1,
	}, nil
}

// Submit resolves one player's word for the current turn.
//
// Validation order: empty → too short → already used → chain mismatch.
// A rejection increments the skip counter; an acceptance records the word,
// awards min(floor(letters/2), MaxPointsPerWord) points, and resets the
// skip counter. Termination is evaluated after every call. Submitting on a
// terminal game is a no-op, as is submitting out of turn — neither counts
// as a skip.
func (g *Game) Submit(playerIndex int, raw string) Result {
	if g.state != StateActive {
		return Result{Accepted: false, Reason: ReasonTerminal, State: g.state}
	}
	if playerIndex != g.turn {
		return Result{Accepted: false, Reason: ReasonNotYourTurn, State: g.state}
	}

	word := strings.TrimSpace(raw)
	canon := Canonical(raw)

	if reason, ok := g.validate(canon); !ok {
		g.skipped++
		g.evaluate()
		return Result{Accepted: false, Reason: reason, State: g.state}
	}

	g.used[canon] = struct{}{}
	g.usedOrder = append(g.usedOrder, word)
	g.lastWord, g.lastCanon = word, canon
	points := wordPoints(canon)
	g.players[playerIndex].AddPoints(points)
	g.skipped = 0
	g.round++
	g.evaluate()
	return Result{Accepted: true, Points: points, State: g.state}
}

// validate applies the rejection rules to a canonical word.
func (g *Game) validate(canon string) (Reason, bool) {
	switch {
	case canon == "":
		return ReasonEmpty, false
	case utf8.RuneCountInString(canon) < MinWordLength:
		return ReasonTooShort, false
	default:
	}
	if _, seen := g.used[canon]; seen {
		return ReasonAlreadyUsed, false
	}
	if g.lastCanon != "" && firstRune(canon) != lastRune(g.lastCanon) {
		return ReasonChainMismatch, false
	}
	return "", true
}

// evaluate applies the termination rules. Word-count win takes precedence
// over attrition when both thresholds are met in the same call.
func (g *Game) evaluate() {
	switch {
	case len(g.used) >= WinWordCount:
		g.state = StateWonByWords
	case g.skipped >= MaxSkippedTurns:
		g.state = StateLostByAttrition
	default:
		return
	}
	g.winner = g.bestScoreIndex()
}

// bestScoreIndex returns the highest-scoring player; ties go to the player
// earliest in turn order. Deterministic by construction.
func (g *Game) bestScoreIndex() int {
	best := 0
	for i, p := range g.players {
		if p.Score > g.players[best].Score {
			best = i
		}
	}
	return best
}

// AdvanceTurn moves to the next player. Called once per resolved turn,
// whether or not the word was accepted.
func (g *Game) AdvanceTurn() {
	g.turn = (g.turn + 1) % len(g.players)
}

// PlayTurn asks the mover for the current player's word and resolves the
// turn, advancing to the next player. A mover that produces nothing (a
// human who gave up, a computer with no candidate) submits an empty word,
// which the machine counts as a skip.
func (g *Game) PlayTurn(m Mover) (string, Result) {
	if g.state != StateActive {
		return "", Result{Accepted: false, Reason: ReasonTerminal, State: g.state}
	}
	word, ok := m.NextWord(g.View())
	if !ok {
		word = ""
	}
	res := g.Submit(g.turn, word)
	g.AdvanceTurn()
	return word, res
}

// Active reports whether the game still accepts submissions.
func (g *Game) Active() bool { return g.state == StateActive }

// State returns the machine's current state.
func (g *Game) State() State { return g.state }

// TurnIndex returns the index of the player whose move is expected.
func (g *Game) TurnIndex() int { return g.turn }

// CurrentPlayer returns the player whose move is expected.
func (g *Game) CurrentPlayer() *Player { return g.players[g.turn] }

// Players returns the ordered participant list.
func (g *Game) Players() []*Player { return g.players }

// LastWord returns the last accepted word in original casing, or "".
func (g *Game) LastWord() string { return g.lastWord }

// WordCount returns how many words have been accepted.
func (g *Game) WordCount() int { return len(g.used) }

// Round returns the number of resolved accepted turns.
func (g *Game) Round() int { return g.round }

// SkippedTurns returns the current consecutive-skip count.
func (g *Game) SkippedTurns() int { return g.skipped }

// UsedWords returns the accepted words in original casing, oldest first.
func (g *Game) UsedWords() []string {
	return append([]string(nil), g.usedOrder...)
}

// Winner returns the winning player once the game is terminal.
func (g *Game) Winner() (*Player, bool) {
	if g.state == StateActive || g.winner < 0 {
		return nil, false
	}
	return g.players[g.winner], true
}

// View builds the read-only turn context handed to a Mover.
// The used set is copied so a player abstraction can never mutate state.
func (g *Game) View() TurnView {
	used := make(map[string]struct{}, len(g.used))
	for w := range g.used {
		used[w] = struct{}{}
	}
	return TurnView{Category: g.Category, Used: used, LastWord: g.lastCanon}
}

// Reports builds the per-player terminal summaries for the stats store.
// Returns nil while the game is still active.
func (g *Game) Reports() []Report {
	if g.state == StateActive {
		return nil
	}
	out := make([]Report, 0, len(g.players))
	for i, p := range g.players {
		out = append(out, Report{
			PlayerRef:  p.Ref(),
			FinalScore: p.Score,
			IsWinner:   i == g.winner,
			LastWord:   g.lastWord,
			Category:   g.Category,
		})
	}
	return out
}

// wordPoints awards floor(letters/2) capped at MaxPointsPerWord.
func wordPoints(canon string) int {
	p := utf8.RuneCountInString(canon) / 2
	if p > MaxPointsPerWord {
		return MaxPointsPerWord
	}
	return p
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
