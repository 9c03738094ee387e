package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Comment struct {
	ID        int64       `json:"id"`
	VideoID   int64       `json:"video_id"`
	Text      string      `json:"text"`
	Author    VideoAuthor `json:"author"`
	CreatedAt time.Time   `json:"created_at"`
}

// CommentRepository defines persistence operations for video comments.
type CommentRepository interface {
	Create(ctx context.Context, videoID, authorID int64, text string) (*Comment, error)
	ListByVideo(ctx context.Context, videoID int64, page, perPage int) ([]Comment, int, error)
}

// PgCommentRepository implements CommentRepository using pgxpool.
type PgCommentRepository struct {
	db *pgxpool.Pool
}

func NewPgCommentRepository(db *pgxpool.Pool) *PgCommentRepository {
	return &PgCommentRepository{db: db}
}

func (r *PgCommentRepository) Create(ctx context.Context, videoID, authorID int64, text string) (*Comment, error) {
	const q = `INSERT INTO comments (video_id, author_id, body) VALUES ($1,$2,$3) RETURNING id, created_at`
	c := Comment{VideoID: videoID, Text: text}
	if err := r.db.QueryRow(ctx, q, videoID, authorID, text).Scan(&c.ID, &c.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	const authorQ = `SELECT id, name FROM accounts WHERE id=$1`
	if err := r.db.QueryRow(ctx, authorQ, authorID).Scan(&c.Author.ID, &c.Author.Name); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgCommentRepository) ListByVideo(ctx context.Context, videoID int64, page, perPage int) ([]Comment, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	const countQ = `SELECT COUNT(*) FROM comments WHERE video_id=$1`
	var total int
	if err := r.db.QueryRow(ctx, countQ, videoID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `
SELECT c.id, c.video_id, c.body, c.created_at, a.id, a.name
FROM comments c
JOIN accounts a ON a.id = c.author_id
WHERE c.video_id = $1
ORDER BY c.created_at DESC, c.id DESC
LIMIT $2 OFFSET $3
`, videoID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]Comment, 0, perPage)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.VideoID, &c.Text, &c.CreatedAt, &c.Author.ID, &c.Author.Name); err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
