package services

import (
	"testing"
	"time"

	"zonelan-service/internal/models"
)

func TestNextMaintenanceDate(t *testing.T) {
	from := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency models.MaintenanceFrequency
		want      time.Time
	}{
		{models.FrequencyWeekly, from.AddDate(0, 0, 7)},
		{models.FrequencyBiweekly, from.AddDate(0, 0, 15)},
		{models.FrequencyMonthly, from.AddDate(0, 0, 30)},
		{models.FrequencyQuarterly, from.AddDate(0, 0, 90)},
		{models.FrequencySemiannual, from.AddDate(0, 0, 180)},
		{models.FrequencyAnnual, from.AddDate(0, 0, 365)},
	}
	for _, tt := range tests {
		t.Run(string(tt.frequency), func(t *testing.T) {
			got := nextMaintenanceDate(from, tt.frequency)
			if got == nil || !got.Equal(tt.want) {
				t.Errorf("nextMaintenanceDate(%s) = %v, want %v", tt.frequency, got, tt.want)
			}
		})
	}

	if got := nextMaintenanceDate(from, models.MaintenanceFrequency("DAILY")); got != nil {
		t.Errorf("frecuencia desconocida debe devolver nil, got %v", got)
	}
}
