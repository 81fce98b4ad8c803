package printing

import (
	"fmt"
	"strconv"
	"strings"
)

// PageRange is an inclusive, 1-based page interval. A nil *PageRange means
// "all pages", which is a valid state distinct from a range that failed to
// parse.
type PageRange struct {
	From int
	To   int
}

// String returns the wire form of the range ("N" or "A-B")
func (r *PageRange) String() string {
	if r == nil {
		return ""
	}
	if r.From == r.To {
		return strconv.Itoa(r.From)
	}
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// ParsePageRange parses a page range expression. Accepted shapes are a single
// page number "N" (from = to = N) and an interval "A-B". Both bounds must be
// positive integers with to >= from. A blank or all-whitespace input yields a
// nil range, meaning all pages.
func ParsePageRange(s string) (*PageRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, "-")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid page range %q: expected \"N\" or \"A-B\"", s)
	}

	from, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: pages must be integers", s)
	}

	to := from
	if len(parts) == 2 {
		to, err = strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid page range %q: pages must be integers", s)
		}
	}

	if from < 1 || to < 1 {
		return nil, fmt.Errorf("invalid page range %q: pages start at 1", s)
	}
	if to < from {
		return nil, fmt.Errorf("invalid page range %q: end page before start page", s)
	}

	return &PageRange{From: from, To: to}, nil
}
