package inventory

import "testing"

func TestCanAdjust(t *testing.T) {
	tests := []struct {
		name        string
		stock       int
		delta       int
		wantAllowed bool
	}{
		{"receive stock", 0, 10, true},
		{"consume available", 5, -5, true},
		{"consume more than available", 3, -4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanAdjust(AdjustContext{PartID: "P-1", BranchID: "BR-1", Stock: tt.stock, Delta: tt.delta})
			if got.Allowed != tt.wantAllowed {
				t.Errorf("CanAdjust() allowed = %v, want %v", got.Allowed, tt.wantAllowed)
			}
		})
	}
}

func TestNeedsRestock(t *testing.T) {
	if !NeedsRestock(2, 2) || !NeedsRestock(0, 1) || NeedsRestock(5, 2) {
		t.Error("NeedsRestock() returned wrong answer")
	}
}
