package services

import "testing"

func TestNextCode(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		lastCode string
		want     string
	}{
		{"primer código", WarehousePrefix, "", "ALM-001"},
		{"incremento simple", WarehousePrefix, "ALM-003", "ALM-004"},
		{"paso a tres cifras", DepartmentPrefix, "DEP-099", "DEP-100"},
		{"más allá de tres cifras", ShelfPrefix, "EST-999", "EST-1000"},
		{"sufijo no numérico reinicia", TrayPrefix, "BAL-abc", "BAL-001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextCode(tt.prefix, tt.lastCode); got != tt.want {
				t.Errorf("NextCode(%q, %q) = %q, want %q", tt.prefix, tt.lastCode, got, tt.want)
			}
		})
	}
}
