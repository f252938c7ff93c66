package rest

import (
	"errors"
	"strconv"
	"time"
)

func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("must be positive")
	}
	return n, nil
}

// parseDateParam parses an optional YYYY-MM-DD query parameter.
func parseDateParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateParamLayout, v)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
