package commands

import (
	"fmt"
	"strconv"
	"strings"
)

func parseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func optionalID(raw uint) *uint {
	if raw == 0 {
		return nil
	}
	return &raw
}
