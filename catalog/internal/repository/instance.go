package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"locallibrary/catalog/internal/errs"
	"locallibrary/catalog/internal/model"
)

func (r *repository) instanceColumns() sq.SelectBuilder {
	return qb.Select("bi.id", "instance_uid", "b.book_uid", "b.title", "imprint",
		"status", "due_back", "u.username as borrower").
		From(instancesTableName + " bi").
		Join(fmt.Sprintf("%s b on b.id = bi.book_id", booksTableName)).
		LeftJoin(fmt.Sprintf("%s u on u.id = bi.borrower_id", usersTableName))
}

func (r *repository) GetInstance(ctx context.Context, instanceUid string) (model.BookInstance, error) {
	query, args, err := r.instanceColumns().
		Where(sq.Eq{"instance_uid": instanceUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.BookInstance{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.BookInstance{}, err
	}
	defer rows.Close()

	inst, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BookInstance])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BookInstance{}, errs.ErrNotFound
		}
		return model.BookInstance{}, err
	}
	return inst, nil
}

func (r *repository) instancesByBook(ctx context.Context, bookID int) ([]model.BookInstance, error) {
	query, args, err := r.instanceColumns().
		Where(sq.Eq{"bi.book_id": bookID}).
		OrderBy("imprint", "bi.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[model.BookInstance])
}

func (r *repository) CreateInstance(ctx context.Context, instanceUid string, req model.CreateInstanceRequest) (model.BookInstance, error) {
	const q = `
	insert into book_instances (instance_uid, book_id, imprint, status)
	select $1, b.id, $2, 'AVAILABLE' from books b where b.book_uid = $3
`
	ct, err := r.db.Exec(ctx, q, instanceUid, req.Imprint, req.BookUid)
	if err != nil {
		return model.BookInstance{}, err
	}
	if ct.RowsAffected() == 0 {
		return model.BookInstance{}, errs.ErrNotFound
	}
	return r.GetInstance(ctx, instanceUid)
}

// ListBorrowed returns copies on loan ordered by non-decreasing due date.
// An empty username lists every borrower's copies.
func (r *repository) ListBorrowed(ctx context.Context, username string, page, size int) (model.ListInstances, error) {
	countQ := qb.Select("count(*)").
		From(instancesTableName + " bi").
		LeftJoin(fmt.Sprintf("%s u on u.id = bi.borrower_id", usersTableName)).
		Where(sq.Eq{"status": model.StatusOnLoan})
	if username != "" {
		countQ = countQ.Where(sq.Eq{"u.username": username})
	}
	total, err := r.count(ctx, countQ)
	if err != nil {
		return model.ListInstances{}, err
	}

	q := r.instanceColumns().
		Where(sq.Eq{"status": model.StatusOnLoan}).
		OrderBy("due_back", "bi.id")
	if username != "" {
		q = q.Where(sq.Eq{"u.username": username})
	}
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListInstances{}, err
	}
	r.log.Debug("ListBorrowed", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.ListInstances{}, err
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.BookInstance])
	if err != nil {
		return model.ListInstances{}, err
	}

	return model.ListInstances{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: items,
	}, nil
}

func (r *repository) BorrowInstance(ctx context.Context, instanceUid, username string, dueBack model.Date) error {
	const q = `
	update book_instances
	set status = 'ON_LOAN',
	    borrower_id = (select id from users where username = $2),
	    due_back = $3
	where instance_uid = $1 and status = 'AVAILABLE'
`
	ct, err := r.db.Exec(ctx, q, instanceUid, username, dueBack)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotAvailable
	}
	return nil
}

func (r *repository) RenewInstance(ctx context.Context, instanceUid string, dueBack model.Date) error {
	const q = `
	update book_instances
	set due_back = $2
	where instance_uid = $1 and status = 'ON_LOAN'
`
	ct, err := r.db.Exec(ctx, q, instanceUid, dueBack)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ReturnInstance clears the borrower and due date together with the status
// change, keeping the borrower-only-while-on-loan invariant.
func (r *repository) ReturnInstance(ctx context.Context, instanceUid string) (string, string, error) {
	const q = `
	update book_instances bi
	set status = 'AVAILABLE', borrower_id = null, due_back = null
	from books b, users u
	where bi.book_id = b.id
	  and u.id = bi.borrower_id
	  and bi.instance_uid = $1
	  and bi.status = 'ON_LOAN'
	returning b.book_uid, u.username
`
	var bookUid, borrower string
	if err := r.db.QueryRow(ctx, q, instanceUid).Scan(&bookUid, &borrower); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", errs.ErrNotFound
		}
		r.log.Error("ReturnInstance", zap.String("instanceUid", instanceUid), zap.Error(err))
		return "", "", err
	}
	return bookUid, borrower, nil
}
