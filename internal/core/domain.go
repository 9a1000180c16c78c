package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

const (
	Previous Direction = -1
	Stay     Direction = 0
	Next     Direction = 1
)

// DateLayout is the ISO-8601 calendar date format used for persistence.
const DateLayout = "2006-01-02"

const maxTitleLength = 200

type (
	Granularity string

	// Direction is a navigation step between adjacent time frames.
	Direction int

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Budget is one entry of the append-only budget ledger.
	Budget struct {
		ID        int64
		Currency  Currency
		Amount    Money
		Timestamp time.Time
	}

	Category struct {
		ID    int64
		Name  string
		Icon  CategoryIcon
		Color CategoryColor
	}

	Expense struct {
		ID         int64
		Title      string
		Amount     Money
		Date       Date
		CategoryID int64
	}

	// ExpenseDetail is an expense joined with the category it references.
	ExpenseDetail struct {
		Expense
		Category Category
	}

	// TimeFrame is the selected analysis window. Start and End are inclusive.
	TimeFrame struct {
		Granularity Granularity
		Title       string
		Start       Date
		End         Date
	}
)

// IsValid reports whether g is a supported granularity.
func (g Granularity) IsValid() bool {
	switch g {
	case Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (g Granularity) String() string {
	return string(g)
}

// ParseGranularity accepts the granularity name in any letter case.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if !g.IsValid() {
		return "", fmt.Errorf("%w: unknown granularity %q", ErrValidation, s)
	}
	return g, nil
}

func (d Date) Validate() error {
	if d.IsZero() || d.Before(FirstStorableDate.Time) || d.After(LastStorableDate.Time) {
		return ErrInvalidDate
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

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// FirstStorableDate and LastStorableDate bound the dates an expense may
// carry. Persisted dates keep a four digit year so they sort as text.
var (
	FirstStorableDate = NewDate(1, 1, 1)
	LastStorableDate  = NewDate(9999, 12, 31)
)

// ClampToStorable narrows [start, end] to the storable dates. ok is false
// when the range holds no storable date.
func ClampToStorable(start, end Date) (Date, Date, bool) {
	if start.Before(FirstStorableDate.Time) {
		start = FirstStorableDate
	}
	if end.After(LastStorableDate.Time) {
		end = LastStorableDate
	}
	return start, end, !start.After(end.Time)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// AddDays returns the date n calendar days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Equal compares calendar dates.
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Contains reports whether date falls inside the frame, bounds included.
func (tf TimeFrame) Contains(date Date) bool {
	return !date.Before(tf.Start.Time) && !date.After(tf.End.Time)
}

// Key identifies the window independently of its title.
func (tf TimeFrame) Key() string {
	return string(tf.Granularity) + ":" + tf.Start.String() + ":" + tf.End.String()
}

func (b Budget) Validate() error {
	if !b.Currency.IsValid() {
		return ErrInvalidCurrency
	}
	if b.Amount.Cents < 0 {
		return ErrNegativeBudget
	}
	if b.Amount.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Icon.IsValid() {
		return ErrInvalidIcon
	}
	if !c.Color.IsValid() {
		return ErrInvalidColor
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return nil
}
