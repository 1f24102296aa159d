package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLStore keeps each record as a JSON document in lesson_progress.
// The upsert is valid on both SQLite and Postgres.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, userID, lessonID string) (LessonProgress, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT state_json FROM lesson_progress WHERE user_id=$1 AND lesson_id=$2`, userID, lessonID)
	var state string
	if err := row.Scan(&state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LessonProgress{}, false, nil
		}
		return LessonProgress{}, false, storeErr("get", err)
	}
	var p LessonProgress
	if err := json.Unmarshal([]byte(state), &p); err != nil {
		return LessonProgress{}, false, storeErr("decode", err)
	}
	p.normalize()
	return p, true, nil
}

func (s *SQLStore) Put(ctx context.Context, p LessonProgress) error {
	buf, err := json.Marshal(p)
	if err != nil {
		return storeErr("encode", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO lesson_progress (user_id,lesson_id,state_json,updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET state_json=EXCLUDED.state_json, updated_at=EXCLUDED.updated_at`,
		p.UserID, p.LessonID, string(buf), time.Now().Unix())
	return storeErr("put", err)
}
