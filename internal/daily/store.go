package daily

import (
	"context"
	"database/sql"
)

// Result is one finished daily-challenge game for one user.
type Result struct {
	UserID   string `json:"userId"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Score    int    `json:"score"`
	Words    int    `json:"words"`
	Won      bool   `json:"won"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, category, score, words, won)
		 VALUES(?,?,?,?,?,?)`, r.UserID, r.Date, r.Category, r.Score, r.Words, r.Won,
	)
	return err
}

// LBRow is one leaderboard entry for a date.
type LBRow struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
	Words  int    `json:"words"`
	Won    bool   `json:"won"`
}

// Leaderboard returns the top results for a date, best score first.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, score, words, won
		 FROM daily_results
		 WHERE date=?
		 ORDER BY score DESC, words DESC, created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LBRow
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Score, &r.Words, &r.Won); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
