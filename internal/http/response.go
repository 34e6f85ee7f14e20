package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/trace"
)

type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
}

// statusForKind maps a domain error kind to its HTTP status.
func statusForKind(kind string) int {
	switch kind {
	case core.KindInvalidInput:
		return http.StatusBadRequest
	case core.KindDuplicate:
		return http.StatusConflict
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindInvalidOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as a JSON error body. Internal failures are
// logged and never leak their message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.ErrorKind(err)
	status := statusForKind(kind)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err.Error(),
			log.FieldErrorKind, kind,
			log.FieldPath, r.URL.Path,
		)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{
		Error:     msg,
		Kind:      kind,
		RequestID: trace.GetRequestID(r.Context()),
	})
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, kind, msg string) {
	writeJSON(w, status, errorBody{
		Error:     msg,
		Kind:      kind,
		RequestID: trace.GetRequestID(r.Context()),
	})
}

// invalidBody reports a malformed request payload as invalid input.
func invalidBody(err error) error {
	if errors.Is(err, core.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: malformed request body: %v", core.ErrInvalidInput, err)
}

type categoryJSON struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsCustom bool   `json:"isCustom"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{Name: c.Name, Type: c.Type.String(), IsCustom: c.IsCustom}
}

type transactionJSON struct {
	ID          int64     `json:"id"`
	Amount      string    `json:"amount"`
	Date        core.Date `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Amount:      core.FormatAmount(t.Amount),
		Date:        t.Date,
		Category:    t.Category,
		Description: t.Description,
		Type:        t.Type.String(),
	}
}

type reportJSON struct {
	Year         int               `json:"year,omitempty"`
	Month        int               `json:"month,omitempty"`
	StartDate    core.Date         `json:"startDate"`
	EndDate      core.Date         `json:"endDate"`
	Income       map[string]string `json:"income"`
	Expense      map[string]string `json:"expense"`
	TotalIncome  string            `json:"totalIncome"`
	TotalExpense string            `json:"totalExpense"`
	NetSavings   string            `json:"netSavings"`
}

func toReportJSON(r core.Report) reportJSON {
	return reportJSON{
		Year:         r.Year,
		Month:        r.Month,
		StartDate:    r.Start,
		EndDate:      r.End,
		Income:       core.FormatAmounts(r.Income),
		Expense:      core.FormatAmounts(r.Expense),
		TotalIncome:  core.FormatAmount(r.TotalIncome),
		TotalExpense: core.FormatAmount(r.TotalExpense),
		NetSavings:   core.FormatAmount(r.NetSavings),
	}
}

type goalJSON struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	TargetAmount       string    `json:"targetAmount"`
	TargetDate         core.Date `json:"targetDate"`
	StartDate          core.Date `json:"startDate"`
	CurrentProgress    string    `json:"currentProgress"`
	RemainingAmount    string    `json:"remainingAmount"`
	ProgressPercentage string    `json:"progressPercentage"`
}

func toGoalJSON(p core.GoalProgress) goalJSON {
	return goalJSON{
		ID:                 p.Goal.ID,
		Name:               p.Goal.Name,
		TargetAmount:       core.FormatAmount(p.Goal.TargetAmount),
		TargetDate:         p.Goal.TargetDate,
		StartDate:          p.Goal.StartDate,
		CurrentProgress:    core.FormatAmount(p.CurrentProgress),
		RemainingAmount:    core.FormatAmount(p.RemainingAmount),
		ProgressPercentage: core.FormatAmount(p.ProgressPercentage),
	}
}
