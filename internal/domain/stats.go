package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMaintenanceLookahead is how far ahead a hydrostatic test counts as due.
const DefaultMaintenanceLookahead = 90 * 24 * time.Hour

// StateCounts maps each cylinder state to a count.
type StateCounts map[CylinderState]int

// CapacityBucket aggregates cylinders sharing one capacity.
type CapacityBucket struct {
	CapacityKg decimal.Decimal
	Total      int
	ByState    StateCounts
}

// FleetStats summarizes the fleet by state and capacity.
type FleetStats struct {
	Total      int
	ByState    StateCounts
	ByCapacity []CapacityBucket
}

func newStateCounts() StateCounts {
	counts := make(StateCounts, len(CylinderStates))
	for _, s := range CylinderStates {
		counts[s] = 0
	}
	return counts
}

// ComputeFleetStats counts cylinders by state, and by state within each
// capacity. Buckets are ordered by ascending capacity.
func ComputeFleetStats(cylinders []Cylinder) FleetStats {
	stats := FleetStats{ByState: newStateCounts()}
	buckets := make(map[string]*CapacityBucket)

	for _, c := range cylinders {
		stats.Total++
		stats.ByState[c.State]++

		key := c.CapacityKg.String()
		b, ok := buckets[key]
		if !ok {
			b = &CapacityBucket{CapacityKg: c.CapacityKg, ByState: newStateCounts()}
			buckets[key] = b
		}
		b.Total++
		b.ByState[c.State]++
	}

	stats.ByCapacity = make([]CapacityBucket, 0, len(buckets))
	for _, b := range buckets {
		stats.ByCapacity = append(stats.ByCapacity, *b)
	}
	sort.Slice(stats.ByCapacity, func(i, j int) bool {
		return stats.ByCapacity[i].CapacityKg.LessThan(stats.ByCapacity[j].CapacityKg)
	})
	return stats
}

// MaintenanceDue reports whether c's next hydrostatic test falls within
// lookahead of now. Overdue tests are due.
func MaintenanceDue(c Cylinder, now time.Time, lookahead time.Duration) bool {
	if c.NextHydrostaticTest == nil {
		return false
	}
	return !c.NextHydrostaticTest.After(now.Add(lookahead))
}

// CylindersDueForTest returns the cylinders whose hydrostatic test is due.
func CylindersDueForTest(cylinders []Cylinder, now time.Time, lookahead time.Duration) []Cylinder {
	var due []Cylinder
	for _, c := range cylinders {
		if MaintenanceDue(c, now, lookahead) {
			due = append(due, c)
		}
	}
	return due
}

// DailyActivity counts the ledger events of one calendar day.
type DailyActivity struct {
	Date             time.Time
	Fillings         int
	ApprovedFillings int
	RejectedFillings int
	FilledKg         decimal.Decimal
	Transfers        int
	TransfersTo      map[Location]int
	TankEntries      int
	TankExits        int
	TankEntryKg      decimal.Decimal
	TankExitKg       decimal.Decimal
}

// sameDay reports whether t falls on the calendar day of ref in ref's location.
func sameDay(t, ref time.Time) bool {
	t = t.In(ref.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ComputeDailyActivity counts the fillings, transfers and tank movements that
// happened on now's calendar day, in now's location.
func ComputeDailyActivity(now time.Time, fillings []Filling, transfers []Transfer, movements []TankMovement) DailyActivity {
	y, m, d := now.Date()
	act := DailyActivity{
		Date:        time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		FilledKg:    decimal.Zero,
		TransfersTo: make(map[Location]int),
		TankEntryKg: decimal.Zero,
		TankExitKg:  decimal.Zero,
	}

	for _, f := range fillings {
		if !sameDay(f.DateTime, now) {
			continue
		}
		act.Fillings++
		switch f.Status {
		case FillingApproved:
			act.ApprovedFillings++
			act.FilledKg = act.FilledKg.Add(f.AmountKg)
		case FillingRejected:
			act.RejectedFillings++
		}
	}

	for _, t := range transfers {
		if !sameDay(t.DateTime, now) {
			continue
		}
		act.Transfers++
		act.TransfersTo[t.ToLocation]++
	}

	for _, mv := range movements {
		if !sameDay(mv.DateTime, now) {
			continue
		}
		switch mv.MovementType {
		case MovementEntry:
			act.TankEntries++
			act.TankEntryKg = act.TankEntryKg.Add(mv.AmountKg)
		case MovementExit:
			act.TankExits++
			act.TankExitKg = act.TankExitKg.Add(mv.AmountKg)
		}
	}

	return act
}

// ActivityKind distinguishes entries of the recent-activity feed.
type ActivityKind string

const (
	ActivityFilling  ActivityKind = "filling"
	ActivityTransfer ActivityKind = "transfer"
)

// Activity is one entry of the recent-activity feed.
type Activity struct {
	Kind     ActivityKind
	RecordID string
	Operator string
	At       time.Time
	Filling  *Filling
	Transfer *Transfer
}

// RecentActivity merges the latest perKind fillings and transfers, newest
// first, capped at limit. Inputs must be ordered newest first.
func RecentActivity(fillings []Filling, transfers []Transfer, perKind, limit int) []Activity {
	var out []Activity
	for i := 0; i < len(fillings) && i < perKind; i++ {
		f := fillings[i]
		out = append(out, Activity{Kind: ActivityFilling, RecordID: f.ID, Operator: f.Operator, At: f.DateTime, Filling: &f})
	}
	for i := 0; i < len(transfers) && i < perKind; i++ {
		t := transfers[i]
		out = append(out, Activity{Kind: ActivityTransfer, RecordID: t.ID, Operator: t.Operator, At: t.DateTime, Transfer: &t})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Snapshot is the full record set handed to the report exporter.
type Snapshot struct {
	Cylinders     []Cylinder
	Fillings      []Filling
	Transfers     []Transfer
	Maintenance   []MaintenanceRecord
	TankMovements []TankMovement
}
