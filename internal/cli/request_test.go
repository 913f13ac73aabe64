package cli

import "testing"

func TestParsePartQuantities(t *testing.T) {
	parts, err := parsePartQuantities([]string{"PART-FILTER:2", "PART-BOLT"})
	if err != nil {
		t.Fatalf("parsePartQuantities failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0].PartID != "PART-FILTER" || parts[0].Quantity != 2 {
		t.Errorf("unexpected first part %+v", parts[0])
	}
	if parts[1].PartID != "PART-BOLT" || parts[1].Quantity != 1 {
		t.Errorf("expected default quantity 1, got %+v", parts[1])
	}
}

func TestParsePartQuantities_Invalid(t *testing.T) {
	for _, v := range []string{"PART:0", "PART:x", ":3"} {
		if _, err := parsePartQuantities([]string{v}); err == nil {
			t.Errorf("expected error for %q", v)
		}
	}
}
