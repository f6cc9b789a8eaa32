package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/scoreboard/internal/domain/match"
)

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	id, err := store.CreateMatch(ctx, "Final", "Red", "Blue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "Final" {
		t.Errorf("expected id Final, got %s", id)
	}

	if err := store.AddPoints(ctx, id, match.Team1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.AddPoints(ctx, id, match.Team2, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Team1Score != 2 || v.Team2Score != 3 {
		t.Errorf("expected 2-3, got %d-%d", v.Team1Score, v.Team2Score)
	}
	if v.Locked() {
		t.Error("expected new match to be unlocked")
	}
}

func TestMemoryStore_DuplicateName(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.CreateMatch(ctx, "Final", "Red", "Blue"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.AddPoints(ctx, "Final", match.Team1, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := store.CreateMatch(ctx, "Final", "Green", "Yellow")
	if !errors.Is(err, match.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	v, _ := store.Get(ctx, "Final")
	if v.Team1Name != "Red" || v.Team2Name != "Blue" || v.Team1Score != 1 {
		t.Errorf("existing record was modified: %+v", v)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
}

func TestMemoryStore_EmptyInput(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	cases := [][3]string{
		{"", "Red", "Blue"},
		{"Final", "", "Blue"},
		{"Final", "Red", ""},
	}
	for _, c := range cases {
		_, err := store.CreateMatch(ctx, c[0], c[1], c[2])
		if !errors.Is(err, match.ErrDuplicateName) {
			t.Errorf("%v: expected ErrDuplicateName, got %v", c, err)
		}
	}
	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
}

func TestMemoryStore_LockedMatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, _ := store.CreateMatch(ctx, "Final", "Red", "Blue")
	_ = store.AddPoints(ctx, id, match.Team1, 2)

	if err := store.SetLocked(ctx, id, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		err := store.AddPoints(ctx, id, match.Team(i%2+1), 3)
		if !errors.Is(err, match.ErrLockedMatch) {
			t.Errorf("expected ErrLockedMatch, got %v", err)
		}
	}

	v, _ := store.Get(ctx, id)
	if v.Team1Score != 2 || v.Team2Score != 0 {
		t.Errorf("locked match scores changed: %d-%d", v.Team1Score, v.Team2Score)
	}

	// Explicit override is the only way back.
	if err := store.SetLocked(ctx, id, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.AddPoints(ctx, id, match.Team2, 1); err != nil {
		t.Errorf("expected edit after unlock, got %v", err)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.AddPoints(ctx, "nope", match.Team1, 1); !errors.Is(err, match.ErrNotFound) {
		t.Errorf("AddPoints: expected ErrNotFound, got %v", err)
	}
	if err := store.SetLocked(ctx, "nope", true); !errors.Is(err, match.ErrNotFound) {
		t.Errorf("SetLocked: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, "nope"); !errors.Is(err, match.ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithCapacity(8))

	names := []string{"Zeta", "Alpha", "Mid", "Beta"}
	for _, n := range names {
		if _, err := store.CreateMatch(ctx, n, "A", "B"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	list := store.List(ctx)
	if len(list) != len(names) {
		t.Fatalf("expected %d entries, got %d", len(names), len(list))
	}
	for i, n := range names {
		if list[i].Name != n {
			t.Errorf("position %d: expected %s, got %s", i, n, list[i].Name)
		}
	}

	// Not a live view.
	list[0].Team1Score = 99
	_ = store.AddPoints(ctx, "Alpha", match.Team1, 1)
	again := store.List(ctx)
	if again[0].Team1Score != 0 {
		t.Errorf("list shares state with store")
	}
	if list[1].Team1Score != 0 {
		t.Errorf("earlier list observed a later edit")
	}
}

func TestMemoryStore_ScoreIsSumOfPoints(t *testing.T) {
	ctx := context.Background()
	points := []int{1, 3, 2, 2, 1, 3, 3}
	want := 0
	for _, p := range points {
		want += p
	}

	for shift := 0; shift < len(points); shift++ {
		store := NewMemoryStore()
		id, _ := store.CreateMatch(ctx, fmt.Sprintf("m%d", shift), "A", "B")
		for i := range points {
			p := points[(i+shift)%len(points)]
			if err := store.AddPoints(ctx, id, match.Team2, p); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		v, _ := store.Get(ctx, id)
		if v.Team2Score != want {
			t.Errorf("rotation %d: expected %d, got %d", shift, want, v.Team2Score)
		}
	}
}

func TestMemoryStore_Restore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := match.View{Name: "Semis", Team1Name: "A", Team1Score: 1, Team2Name: "B", Team2Score: 0}
	other := match.View{Name: "Final", Team1Name: "C", Team2Name: "D", Lock: match.Locked}
	again := match.View{Name: "Semis", Team1Name: "A", Team1Score: 5, Team2Name: "B", Team2Score: 4, Lock: match.Locked}

	for _, v := range []match.View{first, other, again} {
		if err := store.Restore(ctx, v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	list := store.List(ctx)
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	if list[0] != again {
		t.Errorf("expected later record in first position, got %+v", list[0])
	}
	if list[1] != other {
		t.Errorf("unexpected second record %+v", list[1])
	}

	bad := match.View{Name: "X", Team1Name: "A", Team2Name: "B", Team1Score: -1}
	if err := store.Restore(ctx, bad); !errors.Is(err, match.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}
