package services

import (
	"fmt"
	"time"
	"trip-planner-service/internal/domain"
)

// Itinerary is the ordered waypoint list and the only stateful part of the core.
//
// Every successful mutation raises Version, which is how downstream code
// detects that a previously computed route no longer applies. No-op calls
// (removing an absent id, reordering to the current order) leave it unchanged.
//
// Itinerary is not safe for concurrent use; Planner serializes access.
type Itinerary struct {
	waypoints []domain.Waypoint
	version   uint64
}

func NewItinerary() *Itinerary {
	return &Itinerary{}
}

func (it *Itinerary) Version() uint64 { return it.version }

func (it *Itinerary) Len() int { return len(it.waypoints) }

// Waypoints returns a deep copy in itinerary order.
func (it *Itinerary) Waypoints() []domain.Waypoint {
	out := make([]domain.Waypoint, len(it.waypoints))
	for i, w := range it.waypoints {
		out[i] = w.Clone()
	}
	return out
}

// IDs returns the waypoint ids in itinerary order.
func (it *Itinerary) IDs() []string {
	ids := make([]string, len(it.waypoints))
	for i, w := range it.waypoints {
		ids[i] = w.ID
	}
	return ids
}

func (it *Itinerary) indexOf(id string) int {
	for i, w := range it.waypoints {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// Append a waypoint to the end of the itinerary.
func (it *Itinerary) Add(w domain.Waypoint) error {
	if w.ID == "" {
		return fmt.Errorf("add waypoint: %w: empty id", domain.ErrDuplicateID)
	}
	if it.indexOf(w.ID) >= 0 {
		return fmt.Errorf("add waypoint %q: %w", w.ID, domain.ErrDuplicateID)
	}
	if err := w.Position().Validate(); err != nil {
		return fmt.Errorf("add waypoint %q: %w", w.ID, err)
	}

	it.waypoints = append(it.waypoints, w.Clone())
	it.version++
	return nil
}

// Remove the waypoint with id. Reports whether anything was removed;
// removing an absent id is a no-op.
func (it *Itinerary) Remove(id string) bool {
	i := it.indexOf(id)
	if i < 0 {
		return false
	}

	it.waypoints = append(it.waypoints[:i:i], it.waypoints[i+1:]...)
	it.version++
	return true
}

// Reorder replaces the sequence order with ids, which must be exactly a
// permutation of the current ids. On failure the itinerary is unchanged.
func (it *Itinerary) Reorder(ids []string) error {
	if len(ids) != len(it.waypoints) {
		return fmt.Errorf(
			"reorder: %w: got %d ids, itinerary has %d",
			domain.ErrInvalidPermutation, len(ids), len(it.waypoints),
		)
	}

	byID := make(map[string]domain.Waypoint, len(it.waypoints))
	for _, w := range it.waypoints {
		byID[w.ID] = w
	}

	next := make([]domain.Waypoint, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	changed := false
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("reorder: %w: duplicate id %q", domain.ErrInvalidPermutation, id)
		}
		seen[id] = struct{}{}

		w, ok := byID[id]
		if !ok {
			return fmt.Errorf("reorder: %w: unknown id %q", domain.ErrInvalidPermutation, id)
		}
		if it.waypoints[i].ID != id {
			changed = true
		}
		next = append(next, w)
	}

	if !changed {
		return nil
	}

	it.waypoints = next
	it.version++
	return nil
}

// SetTime sets (or clears, when at is nil) the arrival or departure time of
// the identified waypoint. Arrival/departure ordering is not validated.
func (it *Itinerary) SetTime(id string, kind domain.TimeKind, at *time.Time) error {
	i := it.indexOf(id)
	if i < 0 {
		return fmt.Errorf("set %s time: %w: %q", kind, domain.ErrUnknownWaypoint, id)
	}

	var val *time.Time
	if at != nil {
		t := *at
		val = &t
	}

	switch kind {
	case domain.Arrival:
		it.waypoints[i].ArrivalAt = val
	case domain.Departure:
		it.waypoints[i].DepartureAt = val
	default:
		return fmt.Errorf("set time: %w: %q", domain.ErrInvalidTimeKind, kind)
	}

	it.version++
	return nil
}

// Snapshot captures the state a route request is computed against.
type Snapshot struct {
	Version uint64
	IDs     []string
	Points  []domain.LatLng
}

func (it *Itinerary) Snapshot() Snapshot {
	s := Snapshot{
		Version: it.version,
		IDs:     make([]string, len(it.waypoints)),
		Points:  make([]domain.LatLng, len(it.waypoints)),
	}
	for i, w := range it.waypoints {
		s.IDs[i] = w.ID
		s.Points[i] = w.Position()
	}
	return s
}
