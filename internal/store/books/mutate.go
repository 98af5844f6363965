package books

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/5w1tchy/shelfbot/internal/store/dbx"
)

func (s *SQLStore) Create(ctx context.Context, b models.Book) (models.Book, error) {
	if strings.TrimSpace(b.Title) == "" {
		return models.Book{}, catalog.ErrInvalid
	}
	const q = `
	INSERT INTO books (title, authors, genres, moods, year, cover_url, open_library_id, description, book_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, created_at, updated_at`

	err := dbx.Get(ctx, s.db, q,
		b.Title,
		models.JoinList(b.Authors), models.JoinList(b.Genres), models.JoinList(b.Moods),
		nullIfZero(b.Year), nullIfEmpty(b.CoverURL), nullIfEmpty(b.OpenLibraryID),
		nullIfEmpty(b.Description), nullIfEmpty(b.BookURL),
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return models.Book{}, mapErr(err)
	}
	return b, nil
}

// Update replaces every stored attribute of the row. The row is locked first
// so a concurrent delete surfaces as ErrNotFound instead of a silent no-op.
func (s *SQLStore) Update(ctx context.Context, id string, b models.Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return catalog.ErrInvalid
	}
	return dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		var locked string
		err := dbx.Get(ctx, tx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.ErrNotFound
		}
		if err != nil {
			return mapErr(err)
		}

		const q = `
		UPDATE books
		SET title = $1, authors = $2, genres = $3, moods = $4, year = $5,
		    cover_url = $6, open_library_id = $7, description = $8, book_url = $9,
		    updated_at = now()
		WHERE id = $10`
		_, err = dbx.Exec(ctx, tx, q,
			b.Title,
			models.JoinList(b.Authors), models.JoinList(b.Genres), models.JoinList(b.Moods),
			nullIfZero(b.Year), nullIfEmpty(b.CoverURL), nullIfEmpty(b.OpenLibraryID),
			nullIfEmpty(b.Description), nullIfEmpty(b.BookURL),
			id,
		)
		return mapErr(err)
	})
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := dbx.Exec(ctx, s.db, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
