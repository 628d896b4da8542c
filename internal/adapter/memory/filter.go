package memory

import (
	"time"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

func inRange(t time.Time, f domain.RecordFilter) bool {
	if f.Since != nil && t.Before(*f.Since) {
		return false
	}
	if f.Until != nil && !t.Before(*f.Until) {
		return false
	}
	return true
}

// paginate applies offset and limit; a non-positive limit means no limit.
func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	if items == nil {
		return []T{}
	}
	return items
}

// newerFirst orders ledger records by date, then creation time, both newest
// first, then by id. Times compare at millisecond precision like the SQL store.
func newerFirst(aDate, aCreated time.Time, aID string, bDate, bCreated time.Time, bID string) bool {
	aDate, bDate = aDate.Truncate(time.Millisecond), bDate.Truncate(time.Millisecond)
	if !aDate.Equal(bDate) {
		return aDate.After(bDate)
	}
	aCreated, bCreated = aCreated.Truncate(time.Millisecond), bCreated.Truncate(time.Millisecond)
	if !aCreated.Equal(bCreated) {
		return aCreated.After(bCreated)
	}
	return aID < bID
}
