package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateCoordinates(t *testing.T) {
	require.NoError(t, validateCoordinates(0, 0))
	require.NoError(t, validateCoordinates(90, 180))
	require.NoError(t, validateCoordinates(-90, -180))
	require.NoError(t, validateCoordinates(55.75, 37.62))

	for _, tc := range []struct{ lat, lon float64 }{
		{90.1, 0},
		{-90.1, 0},
		{0, 180.1},
		{0, -180.1},
	} {
		err := validateCoordinates(tc.lat, tc.lon)
		require.Error(t, err)
		require.True(t, IsValidation(err))
	}
}
