package service

import (
	"context"

	"locallibrary/catalog/internal/errs"
	"locallibrary/catalog/internal/model"
	"locallibrary/pkg/kafka"
)

const (
	// LoanPeriodDays is the default loan term, also used as the proposed
	// renewal date.
	LoanPeriodDays = 21
	// RenewalMaxAheadDays bounds how far ahead a renewal may be pushed.
	RenewalMaxAheadDays = 28
)

// ValidateRenewalDate accepts a proposed renewal date that is neither in the
// past nor more than 4 weeks after today.
func ValidateRenewalDate(proposed, today model.Date) error {
	if proposed.Before(today.Time) {
		return errs.ErrRenewalInPast
	}
	if proposed.After(today.AddDays(RenewalMaxAheadDays).Time) {
		return errs.ErrRenewalTooFarAhead
	}
	return nil
}

// RenewalForm returns the renewal form state for a copy, pre-filled with
// today + 3 weeks.
func (s *Service) RenewalForm(ctx context.Context, instanceUid string) (model.RenewalForm, error) {
	if _, err := s.repo.GetInstance(ctx, instanceUid); err != nil {
		return model.RenewalForm{}, err
	}
	return model.RenewalForm{
		InstanceUid: instanceUid,
		RenewalDate: model.Today().AddDays(LoanPeriodDays),
	}, nil
}

func (s *Service) RenewInstance(ctx context.Context, instanceUid string, renewalDate model.Date) error {
	inst, err := s.repo.GetInstance(ctx, instanceUid)
	if err != nil {
		return err
	}
	if err := ValidateRenewalDate(renewalDate, model.Today()); err != nil {
		return err
	}
	if err := s.repo.RenewInstance(ctx, instanceUid, renewalDate); err != nil {
		return err
	}

	borrower := ""
	if inst.Borrower != nil {
		borrower = *inst.Borrower
	}
	s.publishLoanEvent(kafka.EventRenewed, instanceUid, inst.BookUid, borrower, &renewalDate)
	return nil
}

func (s *Service) BorrowInstance(ctx context.Context, instanceUid, username string) (model.BookInstance, error) {
	inst, err := s.repo.GetInstance(ctx, instanceUid)
	if err != nil {
		return model.BookInstance{}, err
	}
	if inst.Status != model.StatusAvailable {
		return model.BookInstance{}, errs.ErrNotAvailable
	}

	dueBack := model.Today().AddDays(LoanPeriodDays)
	if err := s.repo.BorrowInstance(ctx, instanceUid, username, dueBack); err != nil {
		return model.BookInstance{}, err
	}

	s.publishLoanEvent(kafka.EventBorrowed, instanceUid, inst.BookUid, username, &dueBack)
	return s.repo.GetInstance(ctx, instanceUid)
}

func (s *Service) ReturnInstance(ctx context.Context, instanceUid string) error {
	bookUid, borrower, err := s.repo.ReturnInstance(ctx, instanceUid)
	if err != nil {
		return err
	}
	s.publishLoanEvent(kafka.EventReturned, instanceUid, bookUid, borrower, nil)
	return nil
}
