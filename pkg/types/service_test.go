package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceValidate(t *testing.T) {
	tests := []struct {
		name    string
		service Service
		wantErr error
	}{
		{
			name:    "valid hotel service",
			service: Service{Name: "Hotel Mira", Category: CategoryHotel},
		},
		{
			name:    "missing name",
			service: Service{Category: CategoryFlight},
			wantErr: ErrInvalidData,
		},
		{
			name:    "unknown category",
			service: Service{Name: "Mystery", Category: "zeppelin"},
			wantErr: ErrUnknownCategory,
		},
		{
			name:    "empty category",
			service: Service{Name: "Uncategorized"},
			wantErr: ErrUnknownCategory,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.service.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, category := range Categories {
		assert.True(t, ValidCategory(category), category)
	}
	assert.False(t, ValidCategory("zeppelin"))
	assert.False(t, ValidCategory(""))
}
