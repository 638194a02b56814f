package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"locallibrary/catalog/internal/errs"
	"locallibrary/catalog/internal/model"
)

func (r *repository) bookColumns() sq.SelectBuilder {
	return qb.Select("b.id", "book_uid", "title", "summary", "isbn",
		"a.first_name || ' ' || a.last_name as author", "l.name as language").
		From(booksTableName + " b").
		Join(fmt.Sprintf("%s a on a.id = b.author_id", authorsTableName)).
		Join(fmt.Sprintf("%s l on l.id = b.language_id", languagesTableName))
}

func (r *repository) ListBooks(ctx context.Context, page, size int) (model.ListBooks, error) {
	total, err := r.count(ctx, qb.Select("count(*)").From(booksTableName))
	if err != nil {
		return model.ListBooks{}, err
	}

	q := r.bookColumns().OrderBy("title", "b.id")
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.ListBooks{}, err
	}
	defer rows.Close()

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: books,
	}, nil
}

func (r *repository) getBook(ctx context.Context, bookUid string) (model.Book, error) {
	query, args, err := r.bookColumns().
		Where(sq.Eq{"book_uid": bookUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, err
	}
	defer rows.Close()

	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) GetBook(ctx context.Context, bookUid string) (model.BookDetail, error) {
	book, err := r.getBook(ctx, bookUid)
	if err != nil {
		return model.BookDetail{}, err
	}

	const genresQ = `
	select g.name from genres g
	join book_genres bg on bg.genre_id = g.id
	where bg.book_id = $1
	order by g.name
`
	rows, err := r.db.Query(ctx, genresQ, book.ID)
	if err != nil {
		return model.BookDetail{}, err
	}
	genres, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return model.BookDetail{}, err
	}

	copies, err := r.instancesByBook(ctx, book.ID)
	if err != nil {
		return model.BookDetail{}, err
	}

	return model.BookDetail{Book: book, Genres: genres, Copies: copies}, nil
}

func (r *repository) CreateBook(ctx context.Context, bookUid string, req model.CreateBookRequest) (model.Book, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Book{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query, args, err := qb.Insert(booksTableName).
		Columns("book_uid", "title", "summary", "isbn", "author_id", "language_id").
		Values(bookUid, req.Title, req.Summary, req.ISBN, req.AuthorID, req.LanguageID).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var bookID int
	if err := tx.QueryRow(ctx, query, args...).Scan(&bookID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return model.Book{}, errs.ErrAlreadyExists
			case pgerrcode.ForeignKeyViolation:
				return model.Book{}, errs.ErrNotFound
			}
		}
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}

	for _, genreID := range req.GenreIDs {
		q, gargs, err := qb.Insert(bookGenresTableName).
			Columns("book_id", "genre_id").
			Values(bookID, genreID).
			ToSql()
		if err != nil {
			return model.Book{}, err
		}
		if _, err := tx.Exec(ctx, q, gargs...); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return model.Book{}, errs.ErrNotFound
			}
			return model.Book{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Book{}, err
	}

	return r.getBook(ctx, bookUid)
}
