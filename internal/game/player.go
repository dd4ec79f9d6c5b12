// internal/game/player.go
//
// Player identity and the move-producing abstraction.
//
// A Player is plain data: id, display name, score, and a closed variant tag
// ("human"|"computer") with variant-specific fields. The capability to
// produce a word is a separate Mover value so the engine never blocks on
// input itself — the turn loop asks the Mover, then feeds the answer into
// Game.Submit.

package game

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates player variants. Decided at construction time, never
// inferred from a live value.
type Kind string

const (
	KindHuman    Kind = "human"
	KindComputer Kind = "computer"
)

// Difficulty controls the computer opponent's selection policy.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a raw string to a Difficulty, defaulting to medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Player holds identity and score for one participant.
type Player struct {
	ID    string
	Name  string
	Kind  Kind
	Score int

	// Human only: optional external identity used for stats attribution.
	Username string
	Email    string

	// Computer only.
	Difficulty Difficulty
}

// NewHumanPlayer constructs a human participant. Username/email may be
// empty for guests.
func NewHumanPlayer(name, username, email string) *Player {
	return &Player{
		ID:       uuid.NewString(),
		Name:     name,
		Kind:     KindHuman,
		Username: username,
		Email:    email,
	}
}

// NewComputerPlayer constructs a computer participant.
func NewComputerPlayer(name string, d Difficulty) *Player {
	return &Player{
		ID:         uuid.NewString(),
		Name:       name,
		Kind:       KindComputer,
		Difficulty: d,
	}
}

// AddPoints increases the player's score. Negative deltas are ignored so
// the score stays non-negative.
func (p *Player) AddPoints(n int) {
	if n > 0 {
		p.Score += n
	}
}

// ResetScore zeroes the player's score.
func (p *Player) ResetScore() { p.Score = 0 }

// Ref returns the identity reference reported to the stats store:
// username, then email, then the stable player id.
func (p *Player) Ref() string {
	if p.Username != "" {
		return p.Username
	}
	if p.Email != "" {
		return p.Email
	}
	return p.ID
}

// Mover produces the next word for a turn. ok=false means no word was
// produced (the caller submits an empty word, which counts as a skip).
type Mover interface {
	NextWord(view TurnView) (word string, ok bool)
}

// HumanMover delegates to an external input collaborator. The call blocks
// until input arrives; the engine itself never waits on anything.
type HumanMover struct {
	Input func() (string, error)
}

func (m HumanMover) NextWord(TurnView) (string, bool) {
	if m.Input == nil {
		return "", false
	}
	w, err := m.Input()
	if err != nil {
		return "", false
	}
	return w, true
}

// ComputerMover runs the selection algorithm against a word database.
// Source resolves a category to its word list; Rand drives the medium
// policy (a nil Rand falls back to the shared global source).
type ComputerMover struct {
	Source     func(category string) []string
	Difficulty Difficulty
	Rand       *rand.Rand
}

func (m ComputerMover) NextWord(view TurnView) (string, bool) {
	if m.Source == nil {
		return "", false
	}
	return SelectWord(m.Source(view.Category), view.Used, view.LastWord, m.Difficulty, m.Rand)
}
