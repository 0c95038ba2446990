package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrItemRefRequired indicates no item reference was provided.
var ErrItemRefRequired = errors.New("item reference required")

// ParseItemRef parses an item id from args.
// Accepted forms are "12" and "#12". Extra arguments are rejected.
func ParseItemRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrItemRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := args[0]
	digits := strings.TrimPrefix(ref, "#")
	if !isAllDigits(digits) {
		return 0, fmt.Errorf("invalid item reference: %s", ref)
	}
	id, err := strconv.Atoi(digits)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid item reference: %s", ref)
	}
	return id, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
