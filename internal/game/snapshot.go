// internal/game/snapshot.go
//
// Structural (de)serialization of a game plus its players.
// The Snapshot is plain, versionless data — the sole persisted-state
// contract. Loading is lenient about optional fields and strict about
// being all-or-nothing: a snapshot either restores completely or the
// caller's state is left untouched.

package game

import "github.com/google/uuid"

// PlayerSnapshot is the wire form of one participant. Kind is an explicit
// closed discriminator ("human"|"computer") decided at construction time.
type PlayerSnapshot struct {
	Kind       string `json:"kind"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Snapshot captures the full reconstructable game state.
type Snapshot struct {
	Players         []PlayerSnapshot `json:"players"`
	UsedWords       []string         `json:"usedWords"`
	CurrentCategory string           `json:"currentCategory"`
	LastWord        string           `json:"lastWord"`
	IsGameActive    bool             `json:"isGameActive"`
	CurrentUserRef  string           `json:"currentUserRef,omitempty"`
}

// Snapshot converts the game and its players into plain data.
// currentUserRef identifies the session owner for stats attribution and is
// owned by the caller, not by the machine.
func (g *Game) Snapshot(currentUserRef string) Snapshot {
	players := make([]PlayerSnapshot, 0, len(g.players))
	for _, p := range g.players {
		ps := PlayerSnapshot{
			Kind:  string(p.Kind),
			ID:    p.ID,
			Name:  p.Name,
			Score: p.Score,
		}
		switch p.Kind {
		case KindHuman:
			ps.Username, ps.Email = p.Username, p.Email
		case KindComputer:
			ps.Difficulty = string(p.Difficulty)
		}
		players = append(players, ps)
	}
	return Snapshot{
		Players:         players,
		UsedWords:       g.UsedWords(),
		CurrentCategory: g.Category,
		LastWord:        g.lastWord,
		IsGameActive:    g.state == StateActive,
		CurrentUserRef:  currentUserRef,
	}
}

// Restore reconstructs a game from snapshot data.
//
// Leniency rules:
//   - usedWords are deduplicated by canonical form (input is not trusted);
//     first occurrence wins and keeps its casing.
//   - players with an unknown kind tag are dropped, never a crash.
//   - missing difficulty defaults to medium; missing username/email stay
//     empty; a missing/false isGameActive restores a terminal game.
//
// A snapshot that yields no players or no category fails to load; the
// caller's in-progress state must be left as it was.
func Restore(s Snapshot) (*Game, error) {
	if s.CurrentCategory == "" {
		return nil, ErrNoCategory
	}

	players := make([]*Player, 0, len(s.Players))
	for _, ps := range s.Players {
		p := restorePlayer(ps)
		if p == nil {
			continue
		}
		players = append(players, p)
	}
	if len(players) == 0 {
		return nil, ErrEmptySnapshot
	}

	g, err := New(s.CurrentCategory, players)
	if err != nil {
		return nil, err
	}

	for _, w := range s.UsedWords {
		canon := Canonical(w)
		if canon == "" {
			continue
		}
		if _, seen := g.used[canon]; seen {
			continue
		}
		g.used[canon] = struct{}{}
		g.usedOrder = append(g.usedOrder, w)
	}

	g.lastWord = s.LastWord
	g.lastCanon = Canonical(s.LastWord)
	g.round = len(g.used)

	// The snapshot does not carry the terminal discriminant; recompute it
	// from the restored word count.
	if !s.IsGameActive {
		if len(g.used) >= WinWordCount {
			g.state = StateWonByWords
		} else {
			g.state = StateLostByAttrition
		}
		g.winner = g.bestScoreIndex()
	}
	return g, nil
}

// restorePlayer maps one player snapshot back to a Player, or nil for an
// unknown kind tag.
func restorePlayer(ps PlayerSnapshot) *Player {
	if ps.ID == "" {
		ps.ID = uuid.NewString()
	}
	if ps.Score < 0 {
		ps.Score = 0
	}
	switch Kind(ps.Kind) {
	case KindHuman:
		return &Player{
			ID:       ps.ID,
			Name:     ps.Name,
			Kind:     KindHuman,
			Score:    ps.Score,
			Username: ps.Username,
			Email:    ps.Email,
		}
	case KindComputer:
		return &Player{
			ID:         ps.ID,
			Name:       ps.Name,
			Kind:       KindComputer,
			Score:      ps.Score,
			Difficulty: ParseDifficulty(ps.Difficulty),
		}
	default:
		return nil
	}
}
