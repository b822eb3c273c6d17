package geolocation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EcoCSM-App/internal/domain/model"
)

func TestStaticGeolocationProvider(t *testing.T) {
	ctx := context.Background()

	p := NewStaticGeolocationProvider(&model.Coordinate{Latitude: 38.7223, Longitude: -9.1393})
	got, err := p.CurrentPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, 38.7223, got.Latitude)

	_, err = NewStaticGeolocationProvider(nil).CurrentPosition(ctx)
	assert.True(t, errors.Is(err, model.ErrPermissionDenied))
}

func TestParseLatLng(t *testing.T) {
	tests := []struct {
		input   string
		want    *model.Coordinate
		wantErr bool
	}{
		{input: "", want: nil},
		{input: "38.7223,-9.1393", want: &model.Coordinate{Latitude: 38.7223, Longitude: -9.1393}},
		{input: " 38.7 , -9.1 ", want: &model.Coordinate{Latitude: 38.7, Longitude: -9.1}},
		{input: "38.7", wantErr: true},
		{input: "north,-9.1", wantErr: true},
		{input: "95,0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLatLng(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, model.ErrValidationFailure))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
