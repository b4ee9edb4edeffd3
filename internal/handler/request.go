package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/labstack/echo/v4"
)

// FormValue is a form field that accepts a JSON string or number
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("must be a string or number: %w", err)
	}
	*v = FormValue(n.String())
	return nil
}

// monthParam resolves the month query parameter. An absent parameter selects
// the current month, an empty one selects every transaction.
func monthParam(c echo.Context, current domain.YearMonth) (domain.YearMonth, error) {
	if !c.QueryParams().Has("month") {
		return current, nil
	}
	return domain.ParseYearMonth(c.QueryParam("month"))
}

// boolParam parses an optional boolean query parameter
func boolParam(c echo.Context, name string) (bool, error) {
	value := c.QueryParam(name)
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, name)
	}
	return b, nil
}

// intParam parses an optional positive integer query parameter
func intParam(c echo.Context, name string, defaultValue, max int) (int, error) {
	value := c.QueryParam(name)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 || n > max {
		return 0, fmt.Errorf("%w: %s must be between 1 and %d", domain.ErrInvalidInput, name, max)
	}
	return n, nil
}

// viewQuery holds the month and compact parameters shared by dashboard-returning endpoints
type viewQuery struct {
	Month   domain.YearMonth
	Compact bool
}

func parseViewQuery(c echo.Context, current domain.YearMonth) (viewQuery, error) {
	month, err := monthParam(c, current)
	if err != nil {
		return viewQuery{}, err
	}
	compact, err := boolParam(c, "compact")
	if err != nil {
		return viewQuery{}, err
	}
	return viewQuery{Month: month, Compact: compact}, nil
}
