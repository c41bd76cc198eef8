package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS comment_snapshots (
	book_id    TEXT        NOT NULL,
	pos        INT         NOT NULL,
	id         TEXT        NOT NULL,
	parent_id  TEXT,
	content    TEXT        NOT NULL,
	user_id    TEXT        NOT NULL,
	username   TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	is_pinned  BOOLEAN     NOT NULL DEFAULT false,
	likes      INT         NOT NULL DEFAULT 0,
	dislikes   INT         NOT NULL DEFAULT 0,
	PRIMARY KEY (book_id, pos)
);
CREATE TABLE IF NOT EXISTS comment_snapshot_books (
	book_id  TEXT        PRIMARY KEY,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Repo stores one row per comment so snapshots stay queryable from psql.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func Open(ctx context.Context, dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return New(db), nil
}

func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) Save(ctx context.Context, bookID model.ID, comments []model.Comment) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM comment_snapshots WHERE book_id=$1`, string(bookID)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO comment_snapshots
			(book_id, pos, id, parent_id, content, user_id, username, created_at, is_pinned, likes, dislikes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range comments {
		var parent sql.NullString
		if !c.IsRoot() {
			parent = sql.NullString{String: string(*c.ParentID), Valid: true}
		}
		if _, err = stmt.ExecContext(ctx,
			string(bookID), i, string(c.ID), parent, c.Content, string(c.UserID), c.Username,
			c.CreatedAt, c.Pinned, c.Likes, c.Dislikes,
		); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO comment_snapshot_books(book_id, saved_at)
		VALUES ($1, now())
		ON CONFLICT (book_id) DO UPDATE SET saved_at = EXCLUDED.saved_at
	`, string(bookID)); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repo) Load(ctx context.Context, bookID model.ID) ([]model.Comment, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM comment_snapshot_books WHERE book_id=$1`, string(bookID)).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, parent_id, content, user_id, username, created_at, is_pinned, likes, dislikes
		FROM comment_snapshots
		WHERE book_id=$1
		ORDER BY pos
	`, string(bookID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Comment, 0, 64)
	for rows.Next() {
		var (
			c      model.Comment
			parent sql.NullString
		)
		if err := rows.Scan(&c.ID, &parent, &c.Content, &c.UserID, &c.Username,
			&c.CreatedAt, &c.Pinned, &c.Likes, &c.Dislikes); err != nil {
			return nil, err
		}
		if parent.Valid {
			p := model.ID(parent.String)
			c.ParentID = &p
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
