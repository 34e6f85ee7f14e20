package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	MaxCategoryNameLength = 50
	MaxDescriptionLength  = 200
	MaxGoalNameLength     = 100
)

const dateLayout = "2006-01-02"

type (
	// UserID is the opaque, already authenticated identity that scopes
	// every ledger, category and goal operation.
	UserID string

	TransactionType string

	Date struct {
		time.Time
	}

	Category struct {
		ID       int64
		Name     string
		Type     TransactionType
		IsCustom bool
		Owner    UserID // empty for default categories
	}

	Transaction struct {
		ID          int64
		Amount      decimal.Decimal
		Date        Date
		Category    string
		Description string
		Type        TransactionType
		Owner       UserID
	}

	SavingsGoal struct {
		ID           int64
		Name         string
		TargetAmount decimal.Decimal
		TargetDate   Date
		StartDate    Date
		Owner        UserID
	}

	// NewTransaction is the caller-supplied part of a ledger entry. The
	// type is never supplied; it is derived from the category.
	NewTransaction struct {
		Amount      decimal.Decimal
		Date        Date
		Category    string
		Description string
	}

	// TransactionPatch holds optional replacements. Nil fields are left
	// unchanged.
	TransactionPatch struct {
		Amount      *decimal.Decimal
		Category    *string
		Description *string
	}

	// TransactionFilter selects ledger entries. Zero-valued fields match
	// everything; present fields are combined with AND.
	TransactionFilter struct {
		Start    Date
		End      Date
		Category string
		Type     TransactionType
	}

	NewGoal struct {
		Name         string
		TargetAmount decimal.Decimal
		TargetDate   Date
		StartDate    Date // zero means today
	}

	GoalPatch struct {
		TargetAmount *decimal.Decimal
		TargetDate   *Date
	}
)

// DefaultCategories is the ownerless set seeded on first use.
var DefaultCategories = []Category{
	{Name: "Salary", Type: Income},
	{Name: "Food", Type: Expense},
	{Name: "Rent", Type: Expense},
	{Name: "Transportation", Type: Expense},
	{Name: "Entertainment", Type: Expense},
	{Name: "Healthcare", Type: Expense},
	{Name: "Utilities", Type: Expense},
}

func (u UserID) Validate() error {
	if strings.TrimSpace(string(u)) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return nil
}

func (u UserID) String() string { return string(u) }

// ParseTransactionType accepts INCOME or EXPENSE in any letter case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, s)
	}
	return t, nil
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string { return string(t) }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
	}
	return Date{Time: t}, nil
}

// Today truncates now to its calendar date in now's location.
func Today(now time.Time) Date {
	y, m, d := now.Date()
	return NewDate(y, int(m), d)
}

// FirstOfMonth and LastOfMonth bound a calendar month inclusively.
func FirstOfMonth(year, month int) Date {
	return NewDate(year, month, 1)
}

func LastOfMonth(year, month int) Date {
	return NewDate(year, month+1, 0)
}

func (d Date) Day() int {
	return d.Time.Day()
}

func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty reports whether the date is unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Before and After compare calendar dates.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }

// Within reports whether d lies in [start, end], inclusive.
func (d Date) Within(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: date must be a string", ErrInvalidInput)
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

func validateName(field, name string, max int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(name) > max {
		return "", fmt.Errorf("%w: %s too long (max %d characters)", ErrInvalidInput, field, max)
	}
	return name, nil
}

// NormalizeCategoryName trims and validates a category name.
func NormalizeCategoryName(name string) (string, error) {
	return validateName("category name", name, MaxCategoryNameLength)
}

func ValidateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return fmt.Errorf("%w: description too long (max %d characters)", ErrInvalidInput, MaxDescriptionLength)
	}
	return nil
}

// Normalize validates the entry and returns a copy with its amount
// rounded to cents and its text fields trimmed.
func (n NewTransaction) Normalize() (NewTransaction, error) {
	amount, err := NormalizeAmount(n.Amount)
	if err != nil {
		return n, err
	}
	if err := n.Date.Validate(); err != nil {
		return n, err
	}
	category, err := NormalizeCategoryName(n.Category)
	if err != nil {
		return n, err
	}
	desc := strings.TrimSpace(n.Description)
	if err := ValidateDescription(desc); err != nil {
		return n, err
	}
	return NewTransaction{Amount: amount, Date: n.Date, Category: category, Description: desc}, nil
}

// IsEmpty reports whether the patch carries no field at all.
func (p TransactionPatch) IsEmpty() bool {
	return p.Amount == nil && p.Category == nil && p.Description == nil
}

func (f TransactionFilter) Validate() error {
	if !f.Start.IsZero() && !f.End.IsZero() && f.Start.After(f.End) {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidInput, f.Start, f.End)
	}
	if f.Type != "" && !f.Type.IsValid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, f.Type)
	}
	return nil
}

// Matches applies the filter to a single entry. Storage backends that
// cannot push the filter down use it directly.
func (f TransactionFilter) Matches(t Transaction) bool {
	if !f.Start.IsZero() && t.Date.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && t.Date.After(f.End) {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}

// Normalize validates a goal against today and fills the start date.
func (g NewGoal) Normalize(today Date) (NewGoal, error) {
	name, err := validateName("goal name", g.Name, MaxGoalNameLength)
	if err != nil {
		return g, err
	}
	target, err := NormalizeAmount(g.TargetAmount)
	if err != nil {
		return g, err
	}
	if err := ValidateTargetDate(g.TargetDate, today); err != nil {
		return g, err
	}
	start := g.StartDate
	if start.IsZero() {
		start = today
	}
	return NewGoal{Name: name, TargetAmount: target, TargetDate: g.TargetDate, StartDate: start}, nil
}

// ValidateTargetDate requires a date strictly after today.
func ValidateTargetDate(target, today Date) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("%w: target date is required", ErrInvalidInput)
	}
	if !target.After(today) {
		return fmt.Errorf("%w: target date %s must be in the future", ErrInvalidInput, target)
	}
	return nil
}

func (p GoalPatch) IsEmpty() bool {
	return p.TargetAmount == nil && p.TargetDate == nil
}
