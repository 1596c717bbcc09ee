package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"expensemate/internal/core"
)

const dateLayout = "2006-01-02"

var (
	errInvalidBody = errors.New("request body must be a JSON object")
	errInvalidDate = errors.New("date must be YYYY-MM-DD or RFC 3339")
)

// amountField accepts an amount as either a JSON string or a JSON number
// and keeps its textual form.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = amountField(n.String())
	return nil
}

type transactionRequest struct {
	Amount      amountField `json:"amount"`
	Category    string      `json:"category"`
	Type        string      `json:"type"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
}

// toNewTransaction converts the request, reading date-only values as
// midnight in loc. Field validation is left to the store.
func (req transactionRequest) toNewTransaction(loc *time.Location) (core.NewTransaction, error) {
	date, err := parseDate(req.Date, loc)
	if err != nil {
		return core.NewTransaction{}, err
	}
	return core.NewTransaction{
		Amount:      string(req.Amount),
		Category:    core.Category(sanitizeInput(req.Category)),
		Type:        core.TxType(strings.TrimSpace(req.Type)),
		Date:        date,
		Description: sanitizeInput(req.Description),
	}, nil
}

type budgetRequest struct {
	Amount amountField `json:"amount"`
}

// parseDate returns the zero time for an empty value.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, &core.ValidationError{Field: "date", Err: errInvalidDate}
}

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &core.ValidationError{Field: "body", Err: fmt.Errorf("%w: %v", errInvalidBody, err)}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &core.ValidationError{Field: "body", Err: errInvalidBody}
	}
	return nil
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
