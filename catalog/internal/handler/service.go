package handler

import (
	"context"

	"locallibrary/catalog/internal/model"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go -package=service_mocks

type CatalogService interface {
	Index(ctx context.Context) (model.IndexCounts, error)

	ListAuthors(ctx context.Context, page, size int) (model.ListAuthors, error)
	GetAuthor(ctx context.Context, authorID int) (model.AuthorDetail, error)
	CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error)
	UpdateAuthor(ctx context.Context, authorID int, req model.CreateAuthorRequest) (model.Author, error)
	DeleteAuthor(ctx context.Context, authorID int) error
	AuthorForm() model.AuthorForm

	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)
	GetBook(ctx context.Context, bookUid string) (model.BookDetail, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)

	GetInstance(ctx context.Context, instanceUid string) (model.BookInstance, error)
	CreateInstance(ctx context.Context, req model.CreateInstanceRequest) (model.BookInstance, error)
	ListBorrowed(ctx context.Context, username string, page, size int) (model.ListInstances, error)
	BorrowInstance(ctx context.Context, instanceUid, username string) (model.BookInstance, error)
	RenewalForm(ctx context.Context, instanceUid string) (model.RenewalForm, error)
	RenewInstance(ctx context.Context, instanceUid string, renewalDate model.Date) error
	ReturnInstance(ctx context.Context, instanceUid string) error

	ListLoanEvents(ctx context.Context, limit int) ([]model.LoanEventRecord, error)
}

type AuthService interface {
	Register(ctx context.Context, req model.UserCreateRequest) error
	Authorize(ctx context.Context, req model.AuthRequest) (model.AuthResponse, error)
}
