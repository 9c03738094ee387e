package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrVideoNotFound = errors.New("video not found")

// VideoAuthor is the author projection embedded in video responses.
type VideoAuthor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Video struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	URL          string      `json:"url"`
	ThumbnailURL string      `json:"thumbnail_url"`
	Author       VideoAuthor `json:"author"`
	LikesCount   int64       `json:"likes_count"`
	CreatedAt    time.Time   `json:"created_at"`
}

// VideoRepository defines persistence operations for videos and likes.
type VideoRepository interface {
	Create(ctx context.Context, authorID int64, title, description, url, thumbnailURL string) (*Video, error)
	List(ctx context.Context, page, perPage int) ([]Video, int, error)
	Get(ctx context.Context, id int64) (*Video, error)
	ToggleLike(ctx context.Context, videoID, userID int64) (likesCount int64, liked bool, err error)
}

// PgVideoRepository implements VideoRepository using pgxpool.
type PgVideoRepository struct {
	db *pgxpool.Pool
}

func NewPgVideoRepository(db *pgxpool.Pool) *PgVideoRepository {
	return &PgVideoRepository{db: db}
}

func (r *PgVideoRepository) Create(ctx context.Context, authorID int64, title, description, url, thumbnailURL string) (*Video, error) {
	const q = `
INSERT INTO videos (author_id, title, description, url, thumbnail_url)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at`
	v := Video{Title: title, Description: description, URL: url, ThumbnailURL: thumbnailURL}
	if err := r.db.QueryRow(ctx, q, authorID, title, description, url, thumbnailURL).Scan(&v.ID, &v.CreatedAt); err != nil {
		return nil, err
	}
	const authorQ = `SELECT id, name FROM accounts WHERE id=$1`
	if err := r.db.QueryRow(ctx, authorQ, authorID).Scan(&v.Author.ID, &v.Author.Name); err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns videos newest first with their author and like count.
func (r *PgVideoRepository) List(ctx context.Context, page, perPage int) ([]Video, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	const countQ = `SELECT COUNT(*) FROM videos`
	var total int
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `
SELECT v.id, v.title, v.description, v.url, v.thumbnail_url, v.created_at,
       a.id, a.name,
       (SELECT COUNT(*) FROM video_likes l WHERE l.video_id = v.id)
FROM videos v
JOIN accounts a ON a.id = v.author_id
ORDER BY v.created_at DESC, v.id DESC
LIMIT $1 OFFSET $2
`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]Video, 0, perPage)
	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.URL, &v.ThumbnailURL, &v.CreatedAt,
			&v.Author.ID, &v.Author.Name, &v.LikesCount); err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}

func (r *PgVideoRepository) Get(ctx context.Context, id int64) (*Video, error) {
	const q = `
SELECT v.id, v.title, v.description, v.url, v.thumbnail_url, v.created_at,
       a.id, a.name,
       (SELECT COUNT(*) FROM video_likes l WHERE l.video_id = v.id)
FROM videos v
JOIN accounts a ON a.id = v.author_id
WHERE v.id = $1`
	var v Video
	if err := r.db.QueryRow(ctx, q, id).Scan(&v.ID, &v.Title, &v.Description, &v.URL, &v.ThumbnailURL, &v.CreatedAt,
		&v.Author.ID, &v.Author.Name, &v.LikesCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ToggleLike adds or removes the user's like in a single transaction and
// returns the resulting count together with the new liked state.
func (r *PgVideoRepository) ToggleLike(ctx context.Context, videoID, userID int64) (int64, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback(ctx)

	var exists int
	if err := tx.QueryRow(ctx, `SELECT 1 FROM videos WHERE id=$1`, videoID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, ErrVideoNotFound
		}
		return 0, false, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM video_likes WHERE video_id=$1 AND user_id=$2`, videoID, userID)
	if err != nil {
		return 0, false, err
	}
	liked := tag.RowsAffected() == 0
	if liked {
		if _, err := tx.Exec(ctx, `INSERT INTO video_likes (video_id, user_id) VALUES ($1,$2)`, videoID, userID); err != nil {
			return 0, false, err
		}
	}

	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM video_likes WHERE video_id=$1`, videoID).Scan(&count); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}
	return count, liked, nil
}
