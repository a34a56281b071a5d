package domain

import (
	shipments "shipone/internal/features/shipments/domain"
)

// Snapshot is a read-optimized projection of the shipment population:
// status counts plus service-type and destination-country distributions.
// It is never independently authoritative; it can be rebuilt from the
// shipment store at any time and is maintained incrementally so dashboard
// reads do not rescan every shipment.
type Snapshot struct {
	TotalShipments          int64 `json:"total_shipments"`
	PendingShipments        int64 `json:"pending_shipments"`
	InTransitShipments      int64 `json:"in_transit_shipments"`
	OutForDeliveryShipments int64 `json:"out_for_delivery_shipments"`
	DeliveredShipments      int64 `json:"delivered_shipments"`
	CancelledShipments      int64 `json:"cancelled_shipments"`

	ServiceTypeDistribution        map[string]int64 `json:"service_type_distribution"`
	DestinationCountryDistribution map[string]int64 `json:"destination_country_distribution"`
}

// NewSnapshot returns an empty snapshot with allocated distributions.
func NewSnapshot() Snapshot {
	return Snapshot{
		ServiceTypeDistribution:        make(map[string]int64),
		DestinationCountryDistribution: make(map[string]int64),
	}
}

// Clone returns a deep copy, safe to hand to readers.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.ServiceTypeDistribution = make(map[string]int64, len(s.ServiceTypeDistribution))
	for k, v := range s.ServiceTypeDistribution {
		out.ServiceTypeDistribution[k] = v
	}
	out.DestinationCountryDistribution = make(map[string]int64, len(s.DestinationCountryDistribution))
	for k, v := range s.DestinationCountryDistribution {
		out.DestinationCountryDistribution[k] = v
	}
	return out
}

// AddShipment counts a newly created shipment into the snapshot.
func (s *Snapshot) AddShipment(shipment *shipments.Shipment, status shipments.Status) {
	s.TotalShipments++
	s.ServiceTypeDistribution[string(shipment.ServiceType)]++
	s.DestinationCountryDistribution[shipment.DestinationCountry]++
	s.ShiftStatus("", status)
}

// ShiftStatus moves one shipment between status buckets. An empty previous
// status means the shipment is new and only the current bucket grows.
func (s *Snapshot) ShiftStatus(previous, current shipments.Status) {
	if previous == current {
		return
	}
	if previous != "" {
		s.bump(previous, -1)
	}
	s.bump(current, +1)
}

func (s *Snapshot) bump(status shipments.Status, delta int64) {
	switch status {
	case shipments.StatusPending:
		s.PendingShipments += delta
	case shipments.StatusInTransit:
		s.InTransitShipments += delta
	case shipments.StatusOutForDelivery:
		s.OutForDeliveryShipments += delta
	case shipments.StatusDelivered:
		s.DeliveredShipments += delta
	case shipments.StatusCancelled:
		s.CancelledShipments += delta
	}
}
