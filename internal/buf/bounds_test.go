package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 2, 1) {
		t.Fatalf("Has should be true for valid range")
	}

	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}

func TestCheckListBounds(t *testing.T) {
	end, err := CheckListBounds(1024, 4, 10, 8)
	if err != nil || end != 84 {
		t.Fatalf("CheckListBounds = %d, %v; want 84, nil", end, err)
	}
	if _, err := CheckListBounds(64, 4, 10, 8); err == nil {
		t.Fatalf("expected error when list exceeds buffer")
	}
	if _, err := CheckListBounds(64, -1, 1, 8); err == nil {
		t.Fatalf("expected error for negative offset")
	}
	if _, err := CheckListBounds(64, 0, -1, 8); err == nil {
		t.Fatalf("expected error for negative count")
	}
	if _, err := CheckListBounds(64, 8, math.MaxInt/4, 8); err == nil {
		t.Fatalf("expected error on size overflow")
	}
}
