package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkhin/wordchain/internal/game"
	"github.com/avolkhin/wordchain/internal/store"
	"github.com/avolkhin/wordchain/internal/words"
)

const testSchema = `
CREATE TABLE users (
    id TEXT PRIMARY KEY, username TEXT NOT NULL UNIQUE, email TEXT,
    password_hash TEXT NOT NULL, created_at TEXT NOT NULL,
    games_played INTEGER NOT NULL DEFAULT 0, wins INTEGER NOT NULL DEFAULT 0,
    streak INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE games (
    id TEXT PRIMARY KEY, user_id TEXT, anonymous_id TEXT,
    category TEXT NOT NULL, difficulty TEXT NOT NULL, status TEXT NOT NULL,
    score INTEGER NOT NULL DEFAULT 0, words INTEGER NOT NULL DEFAULT 0,
    last_word TEXT, started_at TEXT NOT NULL, finished_at TEXT
);
CREATE TABLE saves (
    id TEXT PRIMARY KEY, user_id TEXT, anonymous_id TEXT,
    name TEXT NOT NULL, snapshot TEXT NOT NULL, created_at TEXT NOT NULL
);
CREATE TABLE daily_results (
    user_id TEXT NOT NULL, date TEXT NOT NULL, category TEXT NOT NULL,
    score INTEGER NOT NULL, words INTEGER NOT NULL, won INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
    UNIQUE(user_id, date)
);
`

// testClient wraps an httptest server with a cookie-aware client so the
// anonymous identity survives across requests.
type testClient struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	db     *sql.DB
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	require.NoError(t, words.Init())

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	s := New(store.NewMemoryStore(), db)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, srv: srv, client: &http.Client{Jar: jar}, db: db}
}

// playWords submits the human's words in order, expecting each to be
// accepted, and returns the final exchange. With an easy-difficulty
// cities game the computer's replies are deterministic (first candidate
// in list order), so Moscow→Wellington→Istanbul reaches won_by_words.
func (c *testClient) playWords(gameID string, words ...string) wordRes {
	c.t.Helper()
	var res wordRes
	for _, word := range words {
		code := c.postJSON("/game/word", map[string]string{"gameId": gameID, "word": word}, &res)
		require.Equal(c.t, http.StatusOK, code)
		require.True(c.t, res.Turns[0].Accepted, "word %q", word)
	}
	return res
}

func (c *testClient) postJSON(path string, body any, out any) int {
	c.t.Helper()
	data, err := json.Marshal(body)
	require.NoError(c.t, err)
	resp, err := c.client.Post(c.srv.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *testClient) getJSON(path string, out any) int {
	c.t.Helper()
	resp, err := c.client.Get(c.srv.URL + path)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthAndCategories(t *testing.T) {
	c := newTestClient(t)

	assert.Equal(t, http.StatusOK, c.getJSON("/health", nil))

	var cats struct {
		Categories []string `json:"categories"`
	}
	require.Equal(t, http.StatusOK, c.getJSON("/categories", &cats))
	assert.Contains(t, cats.Categories, "cities")
}

func TestNewGameRejectsUnknownCategory(t *testing.T) {
	c := newTestClient(t)
	code := c.postJSON("/game/new", map[string]string{"category": "planets"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGameExchange(t *testing.T) {
	c := newTestClient(t)

	var created newGameRes
	code := c.postJSON("/game/new", map[string]string{
		"category":   "cities",
		"difficulty": "easy",
		"name":       "Tester",
	}, &created)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, created.GameID)
	assert.Equal(t, "Tester", created.Turn)

	var res wordRes
	code = c.postJSON("/game/word", map[string]string{
		"gameId": created.GameID,
		"word":   "Moscow",
	}, &res)
	require.Equal(t, http.StatusOK, code)

	// Human turn accepted, computer replied in the same exchange.
	require.GreaterOrEqual(t, len(res.Turns), 2)
	assert.True(t, res.Turns[0].Accepted)
	assert.Equal(t, 3, res.Turns[0].Points)
	assert.Equal(t, "computer", res.Turns[1].Kind)
	assert.GreaterOrEqual(t, res.WordCount, 1)

	var state stateRes
	require.Equal(t, http.StatusOK, c.getJSON("/game/"+created.GameID, &state))
	assert.Equal(t, "cities", state.Category)
	assert.Contains(t, state.UsedWords, "Moscow")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	c := newTestClient(t)

	var created newGameRes
	require.Equal(t, http.StatusOK, c.postJSON("/game/new", map[string]string{
		"category": "cities", "difficulty": "easy", "name": "Tester",
	}, &created))
	var res wordRes
	require.Equal(t, http.StatusOK, c.postJSON("/game/word", map[string]string{
		"gameId": created.GameID, "word": "Moscow",
	}, &res))

	var saved saveRes
	require.Equal(t, http.StatusOK, c.postJSON("/game/save", map[string]string{
		"gameId": created.GameID, "name": "slot1",
	}, &saved))
	require.NotEmpty(t, saved.SaveID)

	var loaded stateRes
	require.Equal(t, http.StatusOK, c.postJSON("/game/load", map[string]string{"name": "slot1"}, &loaded))
	assert.NotEqual(t, created.GameID, loaded.GameID) // fresh session
	assert.Equal(t, "cities", loaded.Category)
	assert.Contains(t, loaded.UsedWords, "Moscow")
	assert.Equal(t, res.WordCount, loaded.WordCount)
}

func TestLoadMissingSaveIsNotFound(t *testing.T) {
	c := newTestClient(t)
	code := c.postJSON("/game/load", map[string]string{"name": "nope"}, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSignupLoginAndStats(t *testing.T) {
	c := newTestClient(t)

	code := c.postJSON("/auth/signup", map[string]string{
		"username": "alice_01",
		"password": "correcthorse",
		"email":    "alice@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, code)

	var me authUser
	require.Equal(t, http.StatusOK, c.getJSON("/auth/me", &me))
	assert.Equal(t, "alice_01", me.Username)

	var stats struct {
		GamesPlayed int `json:"gamesPlayed"`
		Wins        int `json:"wins"`
	}
	require.Equal(t, http.StatusOK, c.getJSON("/stats/me", &stats))
	assert.Equal(t, 0, stats.GamesPlayed)

	// Duplicate username is rejected.
	code = c.postJSON("/auth/signup", map[string]string{
		"username": "alice_01", "password": "correcthorse",
	}, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestWinOverHTTPRecordsGameRowAndStats(t *testing.T) {
	c := newTestClient(t)

	require.Equal(t, http.StatusOK, c.postJSON("/auth/signup", map[string]string{
		"username": "bob_01", "password": "correcthorse",
	}, nil))

	var created newGameRes
	require.Equal(t, http.StatusOK, c.postJSON("/game/new", map[string]string{
		"category": "cities", "difficulty": "easy",
	}, &created))

	res := c.playWords(created.GameID, "Moscow", "Wellington", "Istanbul")
	assert.Equal(t, game.StateWonByWords, res.State)
	assert.Equal(t, 5, res.WordCount)
	assert.Equal(t, "bob_01", res.Winner)

	var status, lastWord string
	var score, words int
	require.NoError(t, c.db.QueryRow(`SELECT status, score, words, COALESCE(last_word,'') FROM games WHERE id=?`,
		created.GameID).Scan(&status, &score, &words, &lastWord))
	assert.Equal(t, string(game.StateWonByWords), status)
	assert.Equal(t, 9, score) // Moscow + Wellington + Istanbul, capped at 3 each
	assert.Equal(t, 5, words)
	assert.Equal(t, "Istanbul", lastWord)

	var stats struct {
		GamesPlayed int `json:"gamesPlayed"`
		Wins        int `json:"wins"`
		Streak      int `json:"streak"`
	}
	require.Equal(t, http.StatusOK, c.getJSON("/stats/me", &stats))
	assert.Equal(t, 1, stats.GamesPlayed)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Streak)
}

func TestLoadedGameFinishAppearsInHistory(t *testing.T) {
	c := newTestClient(t)

	var created newGameRes
	require.Equal(t, http.StatusOK, c.postJSON("/game/new", map[string]string{
		"category": "cities", "difficulty": "easy", "name": "Tester",
	}, &created))
	c.playWords(created.GameID, "Moscow")

	require.Equal(t, http.StatusOK, c.postJSON("/game/save", map[string]string{
		"gameId": created.GameID, "name": "midgame",
	}, nil))
	var loaded stateRes
	require.Equal(t, http.StatusOK, c.postJSON("/game/load", map[string]string{"name": "midgame"}, &loaded))

	// The restored session gets its own games row and must finish into it.
	res := c.playWords(loaded.GameID, "Wellington", "Istanbul")
	assert.Equal(t, game.StateWonByWords, res.State)

	var status string
	var words int
	require.NoError(t, c.db.QueryRow(`SELECT status, words FROM games WHERE id=?`,
		loaded.GameID).Scan(&status, &words))
	assert.Equal(t, string(game.StateWonByWords), status)
	assert.Equal(t, 5, words)
}

func TestDailyStaleSessionsEvicted(t *testing.T) {
	d := &dailyServer{sessions: map[string]*dailySession{
		"u1|2024-06-14": {Date: "2024-06-14"},
		"u2|2024-06-15": {Date: "2024-06-15"},
	}}
	d.mu.Lock()
	d.evictStale("2024-06-15")
	d.mu.Unlock()

	assert.Len(t, d.sessions, 1)
	assert.Contains(t, d.sessions, "u2|2024-06-15")
}

func TestLockGameSerializesSessionAccess(t *testing.T) {
	s := &Server{}
	unlock := s.lockGame("g1")

	acquired := make(chan struct{})
	go func() {
		u := s.lockGame("g1")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("lock acquired while already held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock never released")
	}
}
