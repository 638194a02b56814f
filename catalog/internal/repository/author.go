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

func (r *repository) ListAuthors(ctx context.Context, page, size int) (model.ListAuthors, error) {
	total, err := r.count(ctx, qb.Select("count(*)").From(authorsTableName))
	if err != nil {
		return model.ListAuthors{}, err
	}

	q := qb.Select("id", "first_name", "last_name", "date_of_birth", "date_of_death").
		From(authorsTableName).
		OrderBy("last_name", "first_name", "id")

	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListAuthors{}, err
	}
	r.log.Debug("ListAuthors", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.ListAuthors{}, err
	}
	defer rows.Close()

	authors, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		return model.ListAuthors{}, err
	}

	return model.ListAuthors{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: authors,
	}, nil
}

func (r *repository) GetAuthor(ctx context.Context, authorID int) (model.AuthorDetail, error) {
	query, args, err := qb.Select("id", "first_name", "last_name", "date_of_birth", "date_of_death").
		From(authorsTableName).
		Where(sq.Eq{"id": authorID}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.AuthorDetail{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.AuthorDetail{}, err
	}
	defer rows.Close()

	author, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AuthorDetail{}, errs.ErrNotFound
		}
		return model.AuthorDetail{}, err
	}

	books, err := r.booksByAuthor(ctx, authorID)
	if err != nil {
		return model.AuthorDetail{}, err
	}

	return model.AuthorDetail{Author: author, Books: books}, nil
}

func (r *repository) booksByAuthor(ctx context.Context, authorID int) ([]model.Book, error) {
	query, args, err := qb.Select("b.id", "book_uid", "title", "summary", "isbn",
		"a.first_name || ' ' || a.last_name as author", "l.name as language").
		From(booksTableName + " b").
		Join(fmt.Sprintf("%s a on a.id = b.author_id", authorsTableName)).
		Join(fmt.Sprintf("%s l on l.id = b.language_id", languagesTableName)).
		Where(sq.Eq{"b.author_id": authorID}).
		OrderBy("title").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
}

func (r *repository) CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error) {
	query, args, err := qb.Insert(authorsTableName).
		Columns("first_name", "last_name", "date_of_birth", "date_of_death").
		Values(req.FirstName, req.LastName, req.DateOfBirth, req.DateOfDeath).
		Suffix("returning id, first_name, last_name, date_of_birth, date_of_death").
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Author{}, err
	}
	defer rows.Close()

	author, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		r.log.Error("CreateAuthor", zap.String("q", query), zap.Any("args", args))
		return model.Author{}, err
	}
	return author, nil
}

func (r *repository) UpdateAuthor(ctx context.Context, authorID int, req model.CreateAuthorRequest) (model.Author, error) {
	query, args, err := qb.Update(authorsTableName).
		Set("first_name", req.FirstName).
		Set("last_name", req.LastName).
		Set("date_of_birth", req.DateOfBirth).
		Set("date_of_death", req.DateOfDeath).
		Where(sq.Eq{"id": authorID}).
		Suffix("returning id, first_name, last_name, date_of_birth, date_of_death").
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Author{}, err
	}
	defer rows.Close()

	author, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Author{}, errs.ErrNotFound
		}
		return model.Author{}, err
	}
	return author, nil
}

func (r *repository) DeleteAuthor(ctx context.Context, authorID int) error {
	query, args, err := qb.Delete(authorsTableName).
		Where(sq.Eq{"id": authorID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return errs.ErrConflict
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
