package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLCatalog stores lessons as JSON documents in the lessons table.
type SQLCatalog struct {
	db *sql.DB
}

func NewSQLCatalog(db *sql.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

func (s *SQLCatalog) PutLesson(ctx context.Context, l Lesson) error {
	if err := l.Validate(); err != nil {
		return err
	}
	cj, err := json.Marshal(l)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO lessons (id,title,content_json,created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, content_json=EXCLUDED.content_json`,
		l.ID, l.Title, string(cj), time.Now().Unix())
	return err
}

func (s *SQLCatalog) Lesson(ctx context.Context, id string) (Lesson, error) {
	row := s.db.QueryRowContext(ctx, `SELECT content_json, created_at FROM lessons WHERE id=$1`, id)
	var (
		cj      string
		created int64
	)
	if err := row.Scan(&cj, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return Lesson{}, err
	}
	var l Lesson
	if err := json.Unmarshal([]byte(cj), &l); err != nil {
		return Lesson{}, err
	}
	l.CreatedAt = created
	return l, nil
}
