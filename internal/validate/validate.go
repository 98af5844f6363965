package validate

import (
	"fmt"
	"strconv"
	"strings"
)

// ClampLimitOffset parses and clamps paging.
func ClampLimitOffset(limitRaw, offsetRaw string, def, max int) (int, int) {
	limit := def
	if v, err := strconv.Atoi(strings.TrimSpace(limitRaw)); err == nil && v >= 1 && v <= max {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(strings.TrimSpace(offsetRaw)); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// ParseYear reads an optional year query value. Empty yields 0.
func ParseYear(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 1000 || y > 2100 {
		return 0, fmt.Errorf("%s must be a year between 1000 and 2100", name)
	}
	return y, nil
}
