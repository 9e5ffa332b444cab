package enums

import "testing"

func TestProgressIndexForwardProgression(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"PLACED":     0,
		"ACCEPTED":   1,
		"PREPARING":  2,
		"PICKED_UP":  3,
		"DELIVERED":  4,
		" delivered": 4,
		"placed ":    0,
	}
	for raw, want := range cases {
		if got := ProgressIndex(raw); got != want {
			t.Fatalf("ProgressIndex(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestProgressIndexUnknownStatusDefaultsToZero(t *testing.T) {
	t.Parallel()

	if got := ProgressIndex("UNKNOWN_STATUS"); got != 0 {
		t.Fatalf("unknown status should map to 0, got %d", got)
	}
	if got := ProgressIndex("REJECTED"); got != 0 {
		t.Fatalf("rejected sits outside the progression, got %d", got)
	}
	if got := ProgressIndex(""); got != 0 {
		t.Fatalf("empty status should map to 0, got %d", got)
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	if !OrderStatusDelivered.IsTerminal() || !OrderStatusRejected.IsTerminal() {
		t.Fatal("delivered and rejected are terminal")
	}
	if OrderStatusPickedUp.IsTerminal() {
		t.Fatal("picked up is not terminal")
	}
}

func TestParseOrderStatusNormalizes(t *testing.T) {
	t.Parallel()

	status, err := ParseOrderStatus("  picked_up ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusPickedUp {
		t.Fatalf("expected PICKED_UP, got %s", status)
	}

	if _, err := ParseOrderStatus("COOKING"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
