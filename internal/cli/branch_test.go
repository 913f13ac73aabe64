package cli

import "testing"

func TestParseHours(t *testing.T) {
	tests := []struct {
		arg     string
		day     int
		open    bool
		from    string
		to      string
		wantErr bool
	}{
		{arg: "1=08:00-17:30", day: 1, open: true, from: "08:00", to: "17:30"},
		{arg: "0=closed", day: 0},
		{arg: "7=08:00-17:00", wantErr: true},
		{arg: "monday", wantErr: true},
		{arg: "2=0800", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			h, err := parseHours(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.arg)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHours failed: %v", err)
			}
			if h.DayOfWeek != tt.day || h.IsOpen != tt.open || h.OpenTime != tt.from || h.CloseTime != tt.to {
				t.Errorf("unexpected hours %+v", h)
			}
		})
	}
}
