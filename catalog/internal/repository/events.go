package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"locallibrary/catalog/internal/model"
)

func (r *repository) InsertLoanEvent(ctx context.Context, event model.LoanEventRecord) error {
	const q = `
	insert into loan_events (event_type, instance_uid, book_uid, username, due_back, timestamp)
	values (@event_type, @instance_uid, @book_uid, @username, @due_back, @timestamp)
`
	args := pgx.NamedArgs{
		"event_type":   event.EventType,
		"instance_uid": event.InstanceUid,
		"book_uid":     event.BookUid,
		"username":     event.Username,
		"due_back":     event.DueBack,
		"timestamp":    event.Timestamp,
	}
	_, err := r.db.Exec(ctx, q, args)
	return err
}

func (r *repository) ListLoanEvents(ctx context.Context, limit int) ([]model.LoanEventRecord, error) {
	query, args, err := qb.Select("id", "event_type", "instance_uid", "book_uid", "username", "due_back", "timestamp").
		From(loanEventsTableName).
		OrderBy("timestamp desc", "id desc").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[model.LoanEventRecord])
}
