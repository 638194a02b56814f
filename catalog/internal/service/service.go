package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"locallibrary/catalog/internal/model"
	"locallibrary/catalog/internal/repository"
	"locallibrary/pkg/kafka"
)

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	publisher kafka.Publisher
}

func NewService(repo repository.Repository, publisher kafka.Publisher, log *zap.Logger) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		publisher: publisher,
	}
}

func (s *Service) Index(ctx context.Context) (model.IndexCounts, error) {
	return s.repo.IndexCounts(ctx)
}

func (s *Service) ListAuthors(ctx context.Context, page, size int) (model.ListAuthors, error) {
	return s.repo.ListAuthors(ctx, page, size)
}

func (s *Service) GetAuthor(ctx context.Context, authorID int) (model.AuthorDetail, error) {
	return s.repo.GetAuthor(ctx, authorID)
}

func (s *Service) CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error) {
	return s.repo.CreateAuthor(ctx, req)
}

func (s *Service) UpdateAuthor(ctx context.Context, authorID int, req model.CreateAuthorRequest) (model.Author, error) {
	return s.repo.UpdateAuthor(ctx, authorID, req)
}

func (s *Service) DeleteAuthor(ctx context.Context, authorID int) error {
	return s.repo.DeleteAuthor(ctx, authorID)
}

// AuthorForm returns the author-creation form state with the death date
// pre-filled to 12/10/2016.
func (s *Service) AuthorForm() model.AuthorForm {
	return model.AuthorForm{
		DateOfDeath: model.NewDate(time.Date(2016, time.October, 12, 0, 0, 0, 0, time.UTC)),
	}
}

func (s *Service) ListBooks(ctx context.Context, page, size int) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, page, size)
}

func (s *Service) GetBook(ctx context.Context, bookUid string) (model.BookDetail, error) {
	return s.repo.GetBook(ctx, bookUid)
}

func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	return s.repo.CreateBook(ctx, uuid.NewString(), req)
}

func (s *Service) GetInstance(ctx context.Context, instanceUid string) (model.BookInstance, error) {
	return s.repo.GetInstance(ctx, instanceUid)
}

func (s *Service) CreateInstance(ctx context.Context, req model.CreateInstanceRequest) (model.BookInstance, error) {
	return s.repo.CreateInstance(ctx, uuid.NewString(), req)
}

func (s *Service) ListBorrowed(ctx context.Context, username string, page, size int) (model.ListInstances, error) {
	return s.repo.ListBorrowed(ctx, username, page, size)
}

// RecordLoanEvent persists a consumed loan event in the audit trail.
func (s *Service) RecordLoanEvent(ctx context.Context, event kafka.LoanEvent) error {
	record := model.LoanEventRecord{
		EventType:   string(event.EventType),
		InstanceUid: event.InstanceUid,
		BookUid:     event.BookUid,
		Username:    event.Username,
		Timestamp:   event.Timestamp,
	}
	if event.DueBack != "" {
		t, err := time.Parse(time.DateOnly, event.DueBack)
		if err != nil {
			return err
		}
		d := model.NewDate(t)
		record.DueBack = &d
	}
	return s.repo.InsertLoanEvent(ctx, record)
}

func (s *Service) ListLoanEvents(ctx context.Context, limit int) ([]model.LoanEventRecord, error) {
	return s.repo.ListLoanEvents(ctx, limit)
}

func (s *Service) publishLoanEvent(eventType kafka.EventType, instanceUid, bookUid, username string, dueBack *model.Date) {
	event := kafka.LoanEvent{
		EventType:   eventType,
		InstanceUid: instanceUid,
		BookUid:     bookUid,
		Username:    username,
		Timestamp:   time.Now().UTC(),
	}
	if dueBack != nil {
		event.DueBack = dueBack.Format(time.DateOnly)
	}
	if err := s.publisher.Publish(kafka.LoanTopic, event); err != nil {
		s.log.Error("publish loan event",
			zap.String("eventType", string(eventType)),
			zap.String("instanceUid", instanceUid),
			zap.Error(err))
	}
}
