package game

import "errors"

// Contract-violation and codec errors. Validation rejections are not
// errors — they come back as Result values from Submit.
var (
	ErrNoPlayers     = errors.New("game needs at least one player")
	ErrEmptySnapshot = errors.New("snapshot has no restorable players")
	ErrNoCategory    = errors.New("snapshot has no category")
)
