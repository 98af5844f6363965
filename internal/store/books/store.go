package books

import (
	"context"
	"database/sql"
	"errors"

	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/5w1tchy/shelfbot/internal/store/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLStore persists books in Postgres. authors/genres/moods are TEXT columns
// holding comma-separated values.
type SQLStore struct {
	db *sql.DB
}

var _ catalog.Store = (*SQLStore)(nil)

func New(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

const selectCols = `
	SELECT id, title,
	       COALESCE(authors, ''), COALESCE(genres, ''), COALESCE(moods, ''),
	       COALESCE(year, 0), COALESCE(cover_url, ''), COALESCE(open_library_id, ''),
	       COALESCE(description, ''), COALESCE(book_url, ''),
	       created_at, updated_at
	FROM books`

func (s *SQLStore) List(ctx context.Context) ([]models.Book, error) {
	rows, err := dbx.Query(ctx, s.db, selectCols+` ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, id string) (models.Book, error) {
	b, err := scanBook(dbx.Get(ctx, s.db, selectCols+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, catalog.ErrNotFound
	}
	return b, mapErr(err)
}

func (s *SQLStore) ExistsByExternalID(ctx context.Context, openLibraryID string) (bool, error) {
	if openLibraryID == "" {
		return false, nil
	}
	var exists bool
	err := dbx.Get(ctx, s.db,
		`SELECT EXISTS (SELECT 1 FROM books WHERE open_library_id = $1)`, openLibraryID).Scan(&exists)
	return exists, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(sc scanner) (models.Book, error) {
	var (
		b                      models.Book
		authors, genres, moods string
	)
	err := sc.Scan(&b.ID, &b.Title, &authors, &genres, &moods,
		&b.Year, &b.CoverURL, &b.OpenLibraryID, &b.Description, &b.BookURL,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return models.Book{}, err
	}
	b.Authors = models.SplitList(authors)
	b.Genres = models.SplitList(genres)
	b.Moods = models.SplitList(moods)
	return b, nil
}

// mapErr translates Postgres constraint failures into catalog sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		switch pg.Code {
		case "23505":
			return errors.Join(catalog.ErrConflict, err)
		case "23502", "23514", "22P02", "22001":
			return errors.Join(catalog.ErrInvalid, err)
		}
	}
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
