package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 64 << 10

// amountField accepts both "12.34" and 12.34 and parses with the same
// rules as every other amount.
type amountField struct {
	set   bool
	value decimal.Decimal
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return fmt.Errorf("%w: amount must be a string or number", core.ErrInvalidInput)
		}
	}
	d, err := core.ParseAmount(raw)
	if err != nil {
		return err
	}
	a.set = true
	a.value = d
	return nil
}

func (a amountField) ptr() *decimal.Decimal {
	if !a.set {
		return nil
	}
	v := a.value
	return &v
}

// decodeJSON reads a single JSON object into dst, rejecting unknown
// fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", core.ErrInvalidInput)
		}
		return invalidBody(err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single object", core.ErrInvalidInput)
	}
	return nil
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type createTransactionRequest struct {
	Amount      amountField `json:"amount"`
	Date        core.Date   `json:"date"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
}

func (req createTransactionRequest) toNew() (core.NewTransaction, error) {
	if !req.Amount.set {
		return core.NewTransaction{}, fmt.Errorf("%w: amount is required", core.ErrInvalidInput)
	}
	return core.NewTransaction{
		Amount:      req.Amount.value,
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
	}, nil
}

type updateTransactionRequest struct {
	Amount      amountField `json:"amount"`
	Category    *string     `json:"category"`
	Description *string     `json:"description"`
}

func (req updateTransactionRequest) toPatch() core.TransactionPatch {
	return core.TransactionPatch{
		Amount:      req.Amount.ptr(),
		Category:    req.Category,
		Description: req.Description,
	}
}

type createGoalRequest struct {
	Name         string      `json:"name"`
	TargetAmount amountField `json:"targetAmount"`
	TargetDate   core.Date   `json:"targetDate"`
	StartDate    core.Date   `json:"startDate"`
}

func (req createGoalRequest) toNew() (core.NewGoal, error) {
	if !req.TargetAmount.set {
		return core.NewGoal{}, fmt.Errorf("%w: target amount is required", core.ErrInvalidInput)
	}
	return core.NewGoal{
		Name:         req.Name,
		TargetAmount: req.TargetAmount.value,
		TargetDate:   req.TargetDate,
		StartDate:    req.StartDate,
	}, nil
}

type updateGoalRequest struct {
	TargetAmount amountField `json:"targetAmount"`
	TargetDate   *core.Date  `json:"targetDate"`
}

func (req updateGoalRequest) toPatch() core.GoalPatch {
	return core.GoalPatch{
		TargetAmount: req.TargetAmount.ptr(),
		TargetDate:   req.TargetDate,
	}
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrInvalidInput, raw)
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", core.ErrInvalidInput, name, raw)
	}
	return v, nil
}

func queryDate(q url.Values, name string) (core.Date, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(raw)
}

// parseFilter reads startDate, endDate, category and type from the query.
func parseFilter(q url.Values) (core.TransactionFilter, error) {
	var f core.TransactionFilter
	var err error
	if f.Start, err = queryDate(q, "startDate"); err != nil {
		return f, err
	}
	if f.End, err = queryDate(q, "endDate"); err != nil {
		return f, err
	}
	f.Category = strings.TrimSpace(q.Get("category"))
	if raw := strings.TrimSpace(q.Get("type")); raw != "" {
		if f.Type, err = core.ParseTransactionType(raw); err != nil {
			return f, err
		}
	}
	return f, nil
}
