package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	sq "github.com/Masterminds/squirrel"

	"locallibrary/catalog/internal/model"
)

type Repository interface {
	IndexCounts(ctx context.Context) (model.IndexCounts, error)

	ListAuthors(ctx context.Context, page, size int) (model.ListAuthors, error)
	GetAuthor(ctx context.Context, authorID int) (model.AuthorDetail, error)
	CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error)
	UpdateAuthor(ctx context.Context, authorID int, req model.CreateAuthorRequest) (model.Author, error)
	DeleteAuthor(ctx context.Context, authorID int) error

	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)
	GetBook(ctx context.Context, bookUid string) (model.BookDetail, error)
	CreateBook(ctx context.Context, bookUid string, req model.CreateBookRequest) (model.Book, error)

	GetInstance(ctx context.Context, instanceUid string) (model.BookInstance, error)
	CreateInstance(ctx context.Context, instanceUid string, req model.CreateInstanceRequest) (model.BookInstance, error)
	ListBorrowed(ctx context.Context, username string, page, size int) (model.ListInstances, error)
	BorrowInstance(ctx context.Context, instanceUid, username string, dueBack model.Date) error
	RenewInstance(ctx context.Context, instanceUid string, dueBack model.Date) error
	ReturnInstance(ctx context.Context, instanceUid string) (bookUid, borrower string, err error)

	GetUser(ctx context.Context, username string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) error

	InsertLoanEvent(ctx context.Context, event model.LoanEventRecord) error
	ListLoanEvents(ctx context.Context, limit int) ([]model.LoanEventRecord, error)
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	authorsTableName    = `authors`
	genresTableName     = `genres`
	languagesTableName  = `languages`
	booksTableName      = `books`
	bookGenresTableName = `book_genres`
	instancesTableName  = `book_instances`
	usersTableName      = `users`
	loanEventsTableName = `loan_events`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) IndexCounts(ctx context.Context) (model.IndexCounts, error) {
	const q = `
	select (select count(*) from books)                                           as books,
	       (select count(*) from book_instances)                                  as copies,
	       (select count(*) from book_instances where status = 'AVAILABLE')       as copies_available,
	       (select count(*) from authors)                                         as authors,
	       (select count(*) from genres)                                          as genres
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return model.IndexCounts{}, err
	}
	defer rows.Close()

	return pgx.CollectOneRow(rows, pgx.RowToStructByName[model.IndexCounts])
}

func (r *repository) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
