package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StatusClosed   SaleStatus = "Closed"
	StatusPending  SaleStatus = "Pending"
	StatusCanceled SaleStatus = "Canceled"
)

type (
	SaleStatus string

	Date struct {
		time.Time
	}

	// Period identifies a target month (YYYY-MM).
	Period struct {
		Year  int
		Month int
	}

	Money struct {
		Cents int64
	}

	Sale struct {
		ID             string
		Date           Date
		Amount         Money
		Customer       string
		Representative string
		Product        string
		Status         SaleStatus
	}

	SalesTarget struct {
		Month       Period
		Amount      Money
		DaysInMonth int
		WorkingDays int
	}

	Product struct {
		ID           string
		Name         string
		DefaultPrice Money
	}
)

var (
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidPeriod       = errors.New("invalid period")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidStatus       = errors.New("invalid sale status")
	ErrEmptyCustomer       = errors.New("empty customer")
	ErrEmptyRepresentative = errors.New("empty representative")
	ErrEmptyProduct        = errors.New("empty product")
	ErrInvalidTarget       = errors.New("invalid target amount")
	ErrInvalidDaysInMonth  = errors.New("invalid days in month")
	ErrInvalidWorkingDays  = errors.New("invalid working days")
	ErrEmptyName           = errors.New("empty name")
	ErrNameTooLong         = errors.New("name too long (max 200 characters)")
)

const maxNameLen = 200

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Period returns the month the date belongs to.
func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: int(d.Month())}
}

// ParsePeriod parses a YYYY-MM string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Year: t.Year(), Month: int(t.Month())}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) Validate() error {
	if p.Year < 1 || p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	return nil
}

// Days returns the number of calendar days in the month.
func (p Period) Days() int {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether d falls in the month.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && int(d.Month()) == p.Month
}

// Start returns the first day of the month.
func (p Period) Start() Date {
	return NewDate(p.Year, p.Month, 1)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s SaleStatus) IsValid() bool {
	switch s {
	case StatusClosed, StatusPending, StatusCanceled:
		return true
	default:
		return false
	}
}

// ParseSaleStatus maps a case-insensitive status name, defaulting empty input to Closed.
func ParseSaleStatus(s string) (SaleStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "closed":
		return StatusClosed, nil
	case "pending":
		return StatusPending, nil
	case "canceled", "cancelled":
		return StatusCanceled, nil
	default:
		return "", ErrInvalidStatus
	}
}

func (s Sale) Validate() error {
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if err := validateName(s.Customer, ErrEmptyCustomer); err != nil {
		return err
	}
	if err := validateName(s.Representative, ErrEmptyRepresentative); err != nil {
		return err
	}
	if err := validateName(s.Product, ErrEmptyProduct); err != nil {
		return err
	}
	if !s.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

func (t SalesTarget) Validate() error {
	if err := t.Month.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidTarget
	}
	if t.DaysInMonth < 1 || t.DaysInMonth > 31 {
		return ErrInvalidDaysInMonth
	}
	if t.WorkingDays < 0 || t.WorkingDays > t.DaysInMonth {
		return ErrInvalidWorkingDays
	}
	return nil
}

// DailyPace is the revenue per day needed to hit the target linearly.
func (t SalesTarget) DailyPace() float64 {
	if t.DaysInMonth <= 0 {
		return 0
	}
	return float64(t.Amount.Cents) / float64(t.DaysInMonth)
}

func (p Product) Validate() error {
	if err := validateName(p.Name, ErrEmptyName); err != nil {
		return err
	}
	return p.DefaultPrice.Validate()
}

func validateName(s string, empty error) error {
	if strings.TrimSpace(s) == "" {
		return empty
	}
	if len(s) > maxNameLen {
		return ErrNameTooLong
	}
	return nil
}
