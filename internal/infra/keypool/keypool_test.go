package keypool_test

import (
	"testing"

	"github.com/consultapay/checkout-gateway-go/internal/infra/keypool"
)

func TestPool_RoundRobin(t *testing.T) {
	p, err := keypool.New([]string{"key-a", "key-b", "key-c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{p.Next(), p.Next(), p.Next(), p.Next()}
	want := []string{"key-a", "key-b", "key-c", "key-a"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestPool_DropsEmptyKeys(t *testing.T) {
	p, err := keypool.New([]string{"", "key-a", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Size() != 1 {
		t.Errorf("expected size 1, got %d", p.Size())
	}
}

func TestPool_Empty(t *testing.T) {
	if _, err := keypool.New(nil); err == nil {
		t.Fatal("expected error for empty pool")
	}
	if _, err := keypool.New([]string{""}); err == nil {
		t.Fatal("expected error for pool of blank keys")
	}
}

func TestPool_Stats(t *testing.T) {
	p, _ := keypool.New([]string{"key-a", "key-b"})
	p.Next()

	stats := p.Stats()
	if stats.TotalKeys != 2 {
		t.Errorf("expected 2 keys, got %d", stats.TotalKeys)
	}
	if stats.NextKeyIndex != 1 {
		t.Errorf("expected cursor at 1, got %d", stats.NextKeyIndex)
	}
	if stats.EstimatedDailyLimit != 1000 {
		t.Errorf("expected estimated limit 1000, got %d", stats.EstimatedDailyLimit)
	}
}
