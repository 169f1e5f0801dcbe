package pathutil

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned for non-numeric or non-positive IDs.
var ErrInvalidID = errors.New("invalid id")

// ParseID parses a positive int64 path parameter such as r.PathValue("id").
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
