package memory

import (
	"context"
	"errors"
	"testing"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/storage"
)

func ptr(v float64) *float64 { return &v }

func TestObservationStore_InsertAndGetAll(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	obs := &domain.Observation{
		ID:             1,
		DayID:          domain.ParseDay("1"),
		Country:        "DE",
		DEResidualLoad: ptr(42000),
	}

	if err := store.Insert(ctx, obs); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("Expected 1 observation, got %d", len(result))
	}
	if result[0].Country != "DE" {
		t.Errorf("Country mismatch: got %s, want DE", result[0].Country)
	}
	if result[0].DEResidualLoad == nil || *result[0].DEResidualLoad != 42000 {
		t.Errorf("DEResidualLoad mismatch: got %v", result[0].DEResidualLoad)
	}
}

func TestObservationStore_DuplicateKey(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	obs := &domain.Observation{ID: 1, DayID: domain.ParseDay("1"), Country: "DE"}

	if err := store.Insert(ctx, obs); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, obs)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestObservationStore_InsertBulkAtomic(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Observation{ID: 1, Country: "DE"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Batch with a duplicate must not insert anything
	err := store.InsertBulk(ctx, []*domain.Observation{
		{ID: 2, Country: "DE"},
		{ID: 1, Country: "DE"},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	result, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("Expected 1 observation after failed batch, got %d", len(result))
	}
}

func TestObservationStore_IntraBatchDuplicate(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.Observation{
		{ID: 1, Country: "DE"},
		{ID: 1, Country: "FR"},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestObservationStore_GetAllOrdered(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.Observation{
		{ID: 3, Country: "DE"},
		{ID: 1, Country: "FR"},
		{ID: 2, Country: "DE"},
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	for i, want := range []int64{1, 2, 3} {
		if result[i].ID != want {
			t.Errorf("result[%d].ID = %d, want %d", i, result[i].ID, want)
		}
	}
}

func TestObservationStore_GetByCountry(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.Observation{
		{ID: 1, Country: "DE"},
		{ID: 2, Country: "FR"},
		{ID: 3, Country: "FR"},
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByCountry(ctx, "FR")
	if err != nil {
		t.Fatalf("GetByCountry failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 observations, got %d", len(result))
	}
	if result[0].ID != 2 || result[1].ID != 3 {
		t.Errorf("Unexpected order: %d, %d", result[0].ID, result[1].ID)
	}
}

func TestObservationStore_CopyOnRead(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Observation{ID: 1, Country: "DE"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	first, _ := store.GetAll(ctx)
	first[0].Country = "XX"

	second, _ := store.GetAll(ctx)
	if second[0].Country != "DE" {
		t.Errorf("Store state mutated through returned copy")
	}
}
