package model

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Date is a calendar day marshalled as YYYY-MM-DD on the wire.
type Date struct {
	time.Time `json:",inline"`
}

func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	return NewDate(time.Now().UTC())
}

func (d Date) AddDays(days int) Date {
	return Date{Time: d.Time.AddDate(0, 0, days)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return errors.Wrap(err, "date must be YYYY-MM-DD")
	}
	d.Time = t
	return nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	case nil:
		return nil
	default:
		return errors.Errorf("unsupported date source %T", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type Author struct {
	ID          int    `json:"id" db:"id"`
	FirstName   string `json:"firstName" db:"first_name"`
	LastName    string `json:"lastName" db:"last_name"`
	DateOfBirth *Date  `json:"dateOfBirth" db:"date_of_birth"`
	DateOfDeath *Date  `json:"dateOfDeath" db:"date_of_death"`
}

type ListAuthors struct {
	Paging `json:",inline"`
	Items  []Author `json:"items"`
}

type AuthorDetail struct {
	Author `json:",inline"`
	Books  []Book `json:"books"`
}

type Genre struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Language struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Book struct {
	ID       int    `json:"-" db:"id"`
	BookUid  string `json:"bookUid" db:"book_uid"`
	Title    string `json:"title" db:"title"`
	Summary  string `json:"summary" db:"summary"`
	ISBN     string `json:"isbn" db:"isbn"`
	Author   string `json:"author" db:"author"`
	Language string `json:"language" db:"language"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type BookDetail struct {
	Book   `json:",inline"`
	Genres []string       `json:"genres"`
	Copies []BookInstance `json:"copies"`
}

type Status string

const (
	StatusMaintenance Status = "MAINTENANCE"
	StatusOnLoan      Status = "ON_LOAN"
	StatusAvailable   Status = "AVAILABLE"
	StatusReserved    Status = "RESERVED"
)

// BookInstance is a single loanable copy of a book. Borrower is set only
// while the copy is on loan.
type BookInstance struct {
	ID          int     `json:"-" db:"id"`
	InstanceUid string  `json:"instanceUid" db:"instance_uid"`
	BookUid     string  `json:"bookUid" db:"book_uid"`
	Title       string  `json:"title" db:"title"`
	Imprint     string  `json:"imprint" db:"imprint"`
	Status      Status  `json:"status" db:"status"`
	DueBack     *Date   `json:"dueBack" db:"due_back"`
	Borrower    *string `json:"borrower" db:"borrower"`
}

type ListInstances struct {
	Paging `json:",inline"`
	Items  []BookInstance `json:"items"`
}

type IndexCounts struct {
	Books           int `json:"books" db:"books"`
	Copies          int `json:"copies" db:"copies"`
	CopiesAvailable int `json:"copiesAvailable" db:"copies_available"`
	Authors         int `json:"authors" db:"authors"`
	Genres          int `json:"genres" db:"genres"`
}

type User struct {
	ID           int    `json:"-" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Email        string `json:"email" db:"email"`
	Role         string `json:"role" db:"role"`
}

type LoanEventRecord struct {
	ID          int       `json:"-" db:"id"`
	EventType   string    `json:"eventType" db:"event_type"`
	InstanceUid string    `json:"instanceUid" db:"instance_uid"`
	BookUid     string    `json:"bookUid" db:"book_uid"`
	Username    string    `json:"username" db:"username"`
	DueBack     *Date     `json:"dueBack" db:"due_back"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

type CreateAuthorRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	DateOfBirth *Date  `json:"dateOfBirth"`
	DateOfDeath *Date  `json:"dateOfDeath"`
}

type CreateBookRequest struct {
	Title      string `json:"title" validate:"required"`
	Summary    string `json:"summary" validate:"required"`
	ISBN       string `json:"isbn" validate:"required"`
	AuthorID   int    `json:"authorID" validate:"required"`
	LanguageID int    `json:"languageID" validate:"required"`
	GenreIDs   []int  `json:"genreIDs"`
}

type CreateInstanceRequest struct {
	BookUid string `json:"bookUid" validate:"required"`
	Imprint string `json:"imprint" validate:"required"`
}

// AuthorForm is the author-creation form state.
type AuthorForm struct {
	DateOfDeath Date `json:"dateOfDeath"`
}

// RenewalForm is the renewal form state pre-filled with the proposed date.
type RenewalForm struct {
	InstanceUid string `json:"instanceUid"`
	RenewalDate Date   `json:"renewalDate"`
}

type RenewRequest struct {
	RenewalDate Date `json:"renewalDate" validate:"required"`
}

type UserCreateRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,oneof=MEMBER LIBRARIAN"`
}

type AuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	ExpiresAt   int64  `json:"expiresAt"`
	AccessToken string `json:"accessToken"`
}
