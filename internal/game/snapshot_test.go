package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	human := NewHumanPlayer("Alice", "alice", "alice@example.com")
	cpu := NewComputerPlayer("CPU", DifficultyHard)
	g, err := New("cities", []*Player{human, cpu})
	require.NoError(t, err)
	require.True(t, play(g, "Moscow").Accepted)
	require.True(t, play(g, "Warsaw").Accepted)

	snap := g.Snapshot("alice")

	// Survives JSON encoding, the persisted form.
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := Restore(decoded)
	require.NoError(t, err)

	assert.Equal(t, g.Category, restored.Category)
	assert.Equal(t, g.Active(), restored.Active())
	assert.Equal(t, g.LastWord(), restored.LastWord())
	assert.ElementsMatch(t, g.UsedWords(), restored.UsedWords())

	require.Len(t, restored.Players(), 2)
	rh, rc := restored.Players()[0], restored.Players()[1]
	assert.Equal(t, human.ID, rh.ID)
	assert.Equal(t, human.Name, rh.Name)
	assert.Equal(t, human.Score, rh.Score)
	assert.Equal(t, human.Username, rh.Username)
	assert.Equal(t, human.Email, rh.Email)
	assert.Equal(t, KindHuman, rh.Kind)
	assert.Equal(t, cpu.Score, rc.Score)
	assert.Equal(t, DifficultyHard, rc.Difficulty)
	assert.Equal(t, KindComputer, rc.Kind)
}

func TestRestoreDeduplicatesUsedWords(t *testing.T) {
	g, err := Restore(Snapshot{
		Players:         []PlayerSnapshot{{Kind: "human", Name: "Alice"}},
		UsedWords:       []string{"Moscow", "moscow", "MOSCOW", "Warsaw"},
		CurrentCategory: "cities",
		LastWord:        "Warsaw",
		IsGameActive:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, g.WordCount())
	assert.Equal(t, []string{"Moscow", "Warsaw"}, g.UsedWords())
}

func TestRestoreDefaults(t *testing.T) {
	g, err := Restore(Snapshot{
		Players: []PlayerSnapshot{
			{Kind: "human", Name: "Alice"},
			{Kind: "computer", Name: "CPU"},
		},
		CurrentCategory: "animals",
	})
	require.NoError(t, err)

	// Missing usedWords → empty; missing isGameActive → terminal game.
	assert.Equal(t, 0, g.WordCount())
	assert.False(t, g.Active())
	assert.Equal(t, StateLostByAttrition, g.State())

	rh, rc := g.Players()[0], g.Players()[1]
	assert.Empty(t, rh.Username)
	assert.Empty(t, rh.Email)
	assert.NotEmpty(t, rh.ID) // missing id gets a fresh one
	assert.Equal(t, DifficultyMedium, rc.Difficulty)
}

func TestRestoreIgnoresUnknownPlayerKind(t *testing.T) {
	g, err := Restore(Snapshot{
		Players: []PlayerSnapshot{
			{Kind: "alien", Name: "???"},
			{Kind: "human", Name: "Alice"},
		},
		CurrentCategory: "cities",
		IsGameActive:    true,
	})
	require.NoError(t, err)
	require.Len(t, g.Players(), 1)
	assert.Equal(t, "Alice", g.Players()[0].Name)
}

func TestRestoreFailsWithoutPlayersOrCategory(t *testing.T) {
	_, err := Restore(Snapshot{CurrentCategory: "cities"})
	assert.ErrorIs(t, err, ErrEmptySnapshot)

	_, err = Restore(Snapshot{Players: []PlayerSnapshot{{Kind: "human", Name: "A"}}})
	assert.ErrorIs(t, err, ErrNoCategory)

	// Only unknown tags is as empty as no players at all.
	_, err = Restore(Snapshot{
		Players:         []PlayerSnapshot{{Kind: "alien"}},
		CurrentCategory: "cities",
	})
	assert.ErrorIs(t, err, ErrEmptySnapshot)
}

func TestRestoredTerminalStateReflectsWordCount(t *testing.T) {
	g, err := Restore(Snapshot{
		Players:         []PlayerSnapshot{{Kind: "human", Name: "Alice", Score: 9}},
		UsedWords:       []string{"echo", "oat", "tree", "end", "dove"},
		CurrentCategory: "cities",
		LastWord:        "dove",
		IsGameActive:    false,
	})
	require.NoError(t, err)
	assert.Equal(t, StateWonByWords, g.State())
	w, ok := g.Winner()
	require.True(t, ok)
	assert.Equal(t, "Alice", w.Name)
}
