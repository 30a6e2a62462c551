package audit

import (
	"context"
	"encoding/json"
	"testing"
)

func TestMemoryStore_AppendAndList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.Append(ctx, Entry{
		Actor:    "ada@example.com",
		Action:   "loan.create",
		Entity:   "loan",
		EntityID: "L1",
		Detail:   json.RawMessage(`{"amount":"120000"}`),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == "" || first.CreatedAt == "" {
		t.Fatalf("entry not filled: %+v", first)
	}

	if _, err := s.Append(ctx, Entry{
		Actor:    "ada@example.com",
		Action:   "loan.approve",
		Entity:   "loan",
		EntityID: "L1",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.Append(ctx, Entry{
		Actor:    "bola@example.com",
		Action:   "promotion.create",
		Entity:   "promotion",
		EntityID: "P1",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	all, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("entries=%d", len(all))
	}
	// Newest first.
	if all[0].Action != "promotion.create" {
		t.Fatalf("order: first=%s", all[0].Action)
	}

	loans, err := s.List(ctx, Filter{Entity: "loan", EntityID: "L1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(loans) != 2 {
		t.Fatalf("loan entries=%d", len(loans))
	}

	byActor, err := s.List(ctx, Filter{Actor: "bola@example.com"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byActor) != 1 || byActor[0].Entity != "promotion" {
		t.Fatalf("actor filter: %+v", byActor)
	}
}

func TestMemoryStore_Validation(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Append(context.Background(), Entry{Entity: "loan"}); err == nil {
		t.Fatalf("expected error for missing action")
	}
	if _, err := s.Append(context.Background(), Entry{Action: "loan.create"}); err == nil {
		t.Fatalf("expected error for missing entity")
	}
}

func TestMemoryStore_DetailDefaultsToObject(t *testing.T) {
	s := NewMemoryStore()
	e, err := s.Append(context.Background(), Entry{Action: "x.y", Entity: "x"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if string(e.Detail) != `{}` {
		t.Fatalf("detail=%s", e.Detail)
	}
}
