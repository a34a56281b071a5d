package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipone/internal/features/shipments/domain"
)

func storedShipment(trackingNumber string, createdAt time.Time) *domain.Shipment {
	return &domain.Shipment{
		TrackingNumber:     trackingNumber,
		RecipientName:      "Maria Silva",
		OriginCity:         "Lisbon",
		OriginCountry:      "Portugal",
		DestinationCity:    "Sao Paulo",
		DestinationCountry: "Brazil",
		Weight:             2.5,
		PackageType:        domain.PackageTypeBox,
		ServiceType:        domain.ServiceTypeStandard,
		Currency:           domain.DefaultCurrency,
		Status:             domain.StatusPending,
		EstimatedDelivery:  createdAt.AddDate(0, 0, 7),
		CreatedAt:          createdAt,
	}
}

func createdEvent(ts time.Time) domain.TrackingEvent {
	return domain.TrackingEvent{
		ID:          "ev-created",
		Type:        domain.EventTypeCreated,
		Description: domain.EventTypeCreated.DefaultDescription(),
		Timestamp:   ts,
	}
}

// TestMemoryStore_InsertAndGet verifies that a fresh shipment comes back
// pending with its synthetic created event at sequence 1.
func TestMemoryStore_InsertAndGet(t *testing.T) {
	store := NewMemoryShipmentStore()
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	err := store.Insert(ctx, storedShipment("SHP00000001", createdAt), createdEvent(createdAt))
	require.NoError(t, err)

	shipment, events, err := store.Get(ctx, "SHP00000001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, shipment.Status)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeCreated, events[0].Type)
	assert.Equal(t, int64(1), events[0].Sequence)
	assert.Equal(t, "SHP00000001", events[0].TrackingNumber)
}

// TestMemoryStore_InsertDuplicate verifies the uniqueness invariant.
func TestMemoryStore_InsertDuplicate(t *testing.T) {
	store := NewMemoryShipmentStore()
	ctx := context.Background()
	createdAt := time.Now().UTC()

	require.NoError(t, store.Insert(ctx, storedShipment("SHP00000001", createdAt), createdEvent(createdAt)))

	err := store.Insert(ctx, storedShipment("SHP00000001", createdAt), createdEvent(createdAt))
	assert.ErrorIs(t, err, domain.ErrDuplicateTrackingNumber)
}

// TestMemoryStore_AppendUnknownShipment verifies the unknown-id failure.
func TestMemoryStore_AppendUnknownShipment(t *testing.T) {
	store := NewMemoryShipmentStore()

	_, err := store.Append(context.Background(), "SHP99999999", domain.TrackingEvent{
		Type:      domain.EventTypePickup,
		Timestamp: time.Now(),
	})

	assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
}

// TestMemoryStore_AppendAssignsSequence verifies dense, monotonic sequence
// numbers and the derived status transition reported per append.
func TestMemoryStore_AppendAssignsSequence(t *testing.T) {
	store := NewMemoryShipmentStore()
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, storedShipment("SHP00000001", createdAt), createdEvent(createdAt)))

	result, err := store.Append(ctx, "SHP00000001", domain.TrackingEvent{
		ID:        "ev-1",
		Type:      domain.EventTypePickup,
		Timestamp: createdAt.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Sequence)
	assert.Equal(t, domain.StatusPending, result.Previous)
	assert.Equal(t, domain.StatusInTransit, result.Current)

	result, err = store.Append(ctx, "SHP00000001", domain.TrackingEvent{
		ID:        "ev-2",
		Type:      domain.EventTypeOutForDelivery,
		Timestamp: createdAt.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Sequence)
	assert.Equal(t, domain.StatusInTransit, result.Previous)
	assert.Equal(t, domain.StatusOutForDelivery, result.Current)
}

// TestMemoryStore_TerminalRejectsAppend verifies terminal-state monotonicity
// for both terminal event types.
func TestMemoryStore_TerminalRejectsAppend(t *testing.T) {
	for _, terminal := range []domain.EventType{domain.EventTypeDelivered, domain.EventTypeCancelled} {
		store := NewMemoryShipmentStore()
		ctx := context.Background()
		createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, store.Insert(ctx, storedShipment("SHP00000001", createdAt), createdEvent(createdAt)))

		_, err := store.Append(ctx, "SHP00000001", domain.TrackingEvent{
			ID:        "ev-terminal",
			Type:      terminal,
			Timestamp: createdAt.Add(time.Hour),
		})
		require.NoError(t, err)

		_, err = store.Append(ctx, "SHP00000001", domain.TrackingEvent{
			ID:        "ev-late",
			Type:      domain.EventTypeInTransit,
			Timestamp: createdAt.Add(2 * time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrShipmentTerminal, "after %s", terminal)
	}
}

// TestMemoryStore_DeliveredSetsActualDelivery verifies the derived actual
// delivery date on the stored shipment.
func TestMemoryStore_DeliveredSetsActualDelivery(t *testing.T) {
	store := NewMemoryShipmentStore()
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deliveredAt := createdAt.Add(24 * time.Hour)
	require.NoError(t, store.Insert(ctx, storedShipment("SHP00000001", createdAt), createdEvent(createdAt)))

	result, err := store.Append(ctx, "SHP00000001", domain.TrackingEvent{
		ID:        "ev-delivered",
		Type:      domain.EventTypeDelivered,
		Timestamp: deliveredAt,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Shipment.ActualDelivery)
	assert.True(t, result.Shipment.ActualDelivery.Equal(deliveredAt))

	shipment, _, err := store.Get(ctx, "SHP00000001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, shipment.Status)
	require.NotNil(t, shipment.ActualDelivery)
	assert.True(t, shipment.ActualDelivery.Equal(deliveredAt))
}

// TestMemoryStore_ListOrderedSortsByTimestamp verifies the derivation order
// of the returned log when events arrived out of order.
func TestMemoryStore_ListOrderedSortsByTimestamp(t *testing.T) {
	store := NewMemoryShipmentStore()
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, storedShipment("SHP00000001", createdAt), createdEvent(createdAt)))

	// Later timestamp admitted first.
	_, err := store.Append(ctx, "SHP00000001", domain.TrackingEvent{
		ID: "ev-late", Type: domain.EventTypeOutForDelivery, Timestamp: createdAt.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	_, err = store.Append(ctx, "SHP00000001", domain.TrackingEvent{
		ID: "ev-early", Type: domain.EventTypeInTransit, Timestamp: createdAt.Add(time.Hour),
	})
	require.NoError(t, err)

	events, err := store.ListOrdered(ctx, "SHP00000001")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "ev-early", events[1].ID)
	assert.Equal(t, "ev-late", events[2].ID)

	shipment, _, err := store.Get(ctx, "SHP00000001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOutForDelivery, shipment.Status)
}

// TestMemoryStore_ListFiltersAndSorts verifies the substring filter and the
// creation-time-descending order.
func TestMemoryStore_ListFiltersAndSorts(t *testing.T) {
	store := NewMemoryShipmentStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := storedShipment("SHP00000001", base)
	second := storedShipment("SHP00000002", base.Add(time.Hour))
	second.RecipientName = "Joao Santos"
	second.DestinationCity = "Porto"
	require.NoError(t, store.Insert(ctx, first, createdEvent(base)))
	require.NoError(t, store.Insert(ctx, second, createdEvent(base.Add(time.Hour))))

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "SHP00000002", all[0].TrackingNumber) // newest first

	byName, err := store.List(ctx, "joao")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "SHP00000002", byName[0].TrackingNumber)

	byCity, err := store.List(ctx, "PORTO")
	require.NoError(t, err)
	require.Len(t, byCity, 1)

	byNumber, err := store.List(ctx, "00000001")
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, "SHP00000001", byNumber[0].TrackingNumber)

	none, err := store.List(ctx, "zurich")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestMemoryStore_ConcurrentAppends verifies per-shipment serialization:
// parallel appends must produce unique, dense sequence numbers.
func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewMemoryShipmentStore()
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, storedShipment("SHP00000001", createdAt), createdEvent(createdAt)))

	const writers = 50
	var wg sync.WaitGroup
	seqs := make(chan int64, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := store.Append(ctx, "SHP00000001", domain.TrackingEvent{
				ID:        fmt.Sprintf("ev-%d", i),
				Type:      domain.EventTypeInTransit,
				Timestamp: createdAt.Add(time.Duration(i) * time.Minute),
			})
			if err == nil {
				seqs <- result.Sequence
			}
		}(i)
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool)
	for seq := range seqs {
		assert.False(t, seen[seq], "sequence %d assigned twice", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, writers)

	events, err := store.ListOrdered(ctx, "SHP00000001")
	require.NoError(t, err)
	assert.Len(t, events, writers+1)
}

// TestMemoryStore_ConcurrentTerminalRace verifies that the terminal check
// and the append are atomic: once a delivered event lands, no competing
// append can slip in afterwards.
func TestMemoryStore_ConcurrentTerminalRace(t *testing.T) {
	store := NewMemoryShipmentStore()
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, storedShipment("SHP00000001", createdAt), createdEvent(createdAt)))

	const writers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Append(ctx, "SHP00000001", domain.TrackingEvent{
				ID:        fmt.Sprintf("ev-%d", i),
				Type:      domain.EventTypeDelivered,
				Timestamp: createdAt.Add(time.Duration(i+1) * time.Minute),
			})
			if err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	// Exactly one delivered event can win.
	assert.Equal(t, 1, admitted)

	events, err := store.ListOrdered(ctx, "SHP00000001")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

// TestMemoryStore_All verifies the recovery scan.
func TestMemoryStore_All(t *testing.T) {
	store := NewMemoryShipmentStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, storedShipment("SHP00000001", base), createdEvent(base)))
	require.NoError(t, store.Insert(ctx, storedShipment("SHP00000002", base), createdEvent(base)))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, item := range all {
		assert.Len(t, item.Events, 1)
	}
}
