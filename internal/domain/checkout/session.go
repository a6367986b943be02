package checkout

import (
	"regexp"
	"slices"
	"strings"
)

// Session is a read-only view of one purchase attempt as reported by the
// payment processor.
type Session struct {
	ID          string
	ProductIDs  []string
	Status      Status
	AmountTotal int64
	Currency    string
}

// Contains reports whether the session covers the given product.
func (s Session) Contains(productID string) bool {
	return slices.Contains(s.ProductIDs, productID)
}

// Observe folds a newer observation into s. Terminal states win: once a
// session is paid or expired a later "open" report never overwrites it.
func (s Session) Observe(next Session) Session {
	if !s.Status.CanTransition(next.Status) {
		return s
	}
	out := s
	out.Status = next.Status
	if next.AmountTotal != 0 {
		out.AmountTotal = next.AmountTotal
	}
	if next.Currency != "" {
		out.Currency = next.Currency
	}
	if len(out.ProductIDs) == 0 {
		out.ProductIDs = next.ProductIDs
	}
	return out
}

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,255}$`)

// ValidSessionID checks the shape of an opaque session id before it is sent
// to the processor.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// NormalizeProductIDs trims ids, drops blanks and duplicates and keeps the
// first occurrence order.
func NormalizeProductIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// JoinProductIDs / SplitProductIDs are the metadata encoding used on the
// processor side.
func JoinProductIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func SplitProductIDs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormalizeProductIDs(strings.Split(s, ","))
}
