// internal/game/types.go
//
// Core type definitions for the word-chain game engine.
// Defines:
//   - State: coarse machine state (active/won_by_words/lost_by_attrition).
//   - Reason: structured rejection reason for a submitted word.
//   - Result: outcome of a single submission.
//   - TurnView: read-only context handed to a player's move producer.
//   - Report: per-player terminal summary for the stats store.

package game

// State represents the game state machine's position.
// Both terminal states absorb: no transitions lead out of them.
type State string

const (
	StateActive          State = "active"            // turns are being played
	StateWonByWords      State = "won_by_words"      // word-count goal reached
	StateLostByAttrition State = "lost_by_attrition" // too many skipped turns
)

// Rule constants. Fixed parameters of the game, not computed.
const (
	MinWordLength    = 2 // minimum letters after trimming
	WinWordCount     = 5 // accepted words needed to end the game with a win
	MaxSkippedTurns  = 2 // consecutive skips that force a loss
	MaxPointsPerWord = 3 // score cap for a single accepted word
)

// Reason explains why a submission was rejected. Empty on acceptance.
type Reason string

const (
	ReasonEmpty         Reason = "empty"          // blank or whitespace-only word
	ReasonTooShort      Reason = "too_short"      // fewer than MinWordLength letters
	ReasonAlreadyUsed   Reason = "already_used"   // canonical form seen before
	ReasonChainMismatch Reason = "chain_mismatch" // first letter breaks the chain
	ReasonTerminal      Reason = "terminal"       // game already over
	ReasonNotYourTurn   Reason = "not_your_turn"  // submission out of turn order
)

// Result is the outcome of one Submit call.
// Rejections are ordinary values, never errors: the turn loop renders the
// reason and moves on. Points is zero unless Accepted.
type Result struct {
	Accepted bool   `json:"accepted"`
	Reason   Reason `json:"reason,omitempty"`
	Points   int    `json:"points,omitempty"`
	State    State  `json:"state"`
}

// TurnView is the read-only context a player sees when producing a move.
// Used holds canonical (case-folded) forms; LastWord is canonical and empty
// before the first accepted word. The view is a copy — mutating it has no
// effect on the game.
type TurnView struct {
	Category string
	Used     map[string]struct{}
	LastWord string
}

// Report is the per-player summary the core emits once the game is over,
// for an external statistics store to persist.
type Report struct {
	PlayerRef  string // username/email for humans, player id otherwise
	FinalScore int
	IsWinner   bool
	LastWord   string // last word accepted in the game (original casing)
	Category   string
}
