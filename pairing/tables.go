package pairing

import (
	"fmt"

	"matchdesk/models"
)

// TableAllocator hands out table numbers in [1, maxTables], reusing
// previously cleared tables before opening new ones. It is built fresh
// from the current sheet for each pairing pass and mutated only through
// Assign.
type TableAllocator struct {
	maxTables int
	free      map[int]bool
	occupied  map[int]bool
}

// NewTableAllocator seeds the allocator from the in-progress sheet:
// rows with players are occupied, cleared rows donate their retained
// table number to the free set. Numbers above maxTables (the limit may
// have been lowered since the row was written) are ignored.
func NewTableAllocator(sheet []*models.SheetEntry, maxTables int) *TableAllocator {
	a := &TableAllocator{
		maxTables: maxTables,
		free:      make(map[int]bool),
		occupied:  make(map[int]bool),
	}
	for _, row := range sheet {
		if ValidateTableNumber(row.TableNumber, maxTables) != nil {
			continue
		}
		if row.Occupied() {
			a.occupied[row.TableNumber] = true
		} else {
			a.free[row.TableNumber] = true
		}
	}
	for n := range a.occupied {
		delete(a.free, n)
	}
	return a
}

// Assign picks a table for one pair. Preference order: the winner's
// previous table if it is free, then the lowest-numbered free table,
// then the lowest integer never used. ok=false means every number in
// [1, maxTables] is occupied; the caller should skip the pair and keep
// its players eligible, this is backpressure rather than an error.
func (a *TableAllocator) Assign(preferredTable int) (table int, ok bool) {
	if preferredTable >= models.MinTableNumber && a.free[preferredTable] {
		a.take(preferredTable)
		return preferredTable, true
	}
	if n, found := lowestKey(a.free); found {
		a.take(n)
		return n, true
	}
	for n := models.MinTableNumber; n <= a.maxTables; n++ {
		if !a.occupied[n] {
			a.take(n)
			return n, true
		}
	}
	return 0, false
}

func (a *TableAllocator) take(n int) {
	delete(a.free, n)
	a.occupied[n] = true
}

// NextUnused returns the lowest table number not currently occupied,
// without seating it, or 0 when capacity is exhausted. Used for the
// table number recorded on a bye.
func (a *TableAllocator) NextUnused() int {
	if n, found := lowestKey(a.free); found {
		return n
	}
	for n := models.MinTableNumber; n <= a.maxTables; n++ {
		if !a.occupied[n] {
			return n
		}
	}
	return 0
}

// ValidateTableNumber checks a table number against the configured
// capacity.
func ValidateTableNumber(n, maxTables int) error {
	if n < models.MinTableNumber || n > maxTables {
		return fmt.Errorf("table number %d out of range [%d, %d]", n, models.MinTableNumber, maxTables)
	}
	return nil
}

func lowestKey(set map[int]bool) (int, bool) {
	lowest, found := 0, false
	for n := range set {
		if !found || n < lowest {
			lowest, found = n, true
		}
	}
	return lowest, found
}
