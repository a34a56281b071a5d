package domain

import (
	"sort"
	"time"
)

// Derivation is the outcome of folding a shipment's event log.
type Derivation struct {
	// Status is the lifecycle state implied by the chronologically-last event.
	Status Status
	// ActualDelivery is the timestamp of the delivered event, if one exists.
	ActualDelivery *time.Time
}

// Derive computes the current lifecycle state from a shipment's event log.
// It is a pure, total function over any event slice: events are ordered by
// timestamp ascending with sequence as tie-break, so out-of-order admission
// (a delayed carrier update carrying an earlier timestamp) still replays
// deterministically. A cancelled event forces terminal cancelled no matter
// what else is in the log; a delivered event is terminal and pins the
// actual delivery time. Events past a terminal one do not change the status.
func Derive(events []TrackingEvent) Derivation {
	d := Derivation{Status: StatusPending}

	for _, ev := range OrderEvents(events) {
		if ev.Type == EventTypeDelivered && d.ActualDelivery == nil {
			ts := ev.Timestamp
			d.ActualDelivery = &ts
		}
		if ev.Type == EventTypeCancelled {
			d.Status = StatusCancelled
			break
		}
		if !d.Status.Terminal() {
			d.Status = ev.Type.Status()
		}
	}

	return d
}

// OrderEvents returns a copy of the events sorted the way Derive folds
// them: timestamp ascending, sequence as tie-break.
func OrderEvents(events []TrackingEvent) []TrackingEvent {
	ordered := make([]TrackingEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Sequence < ordered[j].Sequence
		}
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	return ordered
}
