package services

import (
	"reflect"
	"testing"

	"zonelan-service/internal/models"
)

func TestComputeLineDeltas(t *testing.T) {
	tests := []struct {
		name    string
		current map[int]int
		desired []models.MaterialLine
		want    []LineDelta
	}{
		{
			name:    "alta inicial consume todo",
			current: map[int]int{},
			desired: []models.MaterialLine{{MaterialID: 1, Quantity: 5}, {MaterialID: 2, Quantity: 3}},
			want:    []LineDelta{{MaterialID: 1, Delta: 5}, {MaterialID: 2, Delta: 3}},
		},
		{
			name:    "sin cambios no emite nada",
			current: map[int]int{1: 5, 2: 3},
			desired: []models.MaterialLine{{MaterialID: 1, Quantity: 5}, {MaterialID: 2, Quantity: 3}},
			want:    nil,
		},
		{
			name:    "subir y bajar cantidades",
			current: map[int]int{1: 5, 2: 3},
			desired: []models.MaterialLine{{MaterialID: 1, Quantity: 8}, {MaterialID: 2, Quantity: 1}},
			want:    []LineDelta{{MaterialID: 1, Delta: 3}, {MaterialID: 2, Delta: -2}},
		},
		{
			name:    "línea eliminada devuelve todo",
			current: map[int]int{1: 5, 2: 3},
			desired: []models.MaterialLine{{MaterialID: 1, Quantity: 5}},
			want:    []LineDelta{{MaterialID: 2, Delta: -3}},
		},
		{
			name:    "líneas duplicadas del mismo material se agregan",
			current: map[int]int{1: 4},
			desired: []models.MaterialLine{{MaterialID: 1, Quantity: 3}, {MaterialID: 1, Quantity: 3}},
			want:    []LineDelta{{MaterialID: 1, Delta: 2}},
		},
		{
			name:    "material nuevo y material retirado a la vez",
			current: map[int]int{1: 5},
			desired: []models.MaterialLine{{MaterialID: 3, Quantity: 2}},
			want:    []LineDelta{{MaterialID: 1, Delta: -5}, {MaterialID: 3, Delta: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLineDeltas(tt.current, tt.desired)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ComputeLineDeltas() = %v, want %v", got, tt.want)
			}
		})
	}
}
