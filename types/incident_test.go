package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Brooklyn, NY", "Brooklyn, NY"},
		{"  Brooklyn,   NY  ", "Brooklyn, NY"},
		{"Brooklyn,\tNY", "Brooklyn, NY"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeRegion(tc.in))
	}
}

func TestNewGeoPoint(t *testing.T) {
	p := NewGeoPoint(-73.99, 40.58)
	assert.Equal(t, "Point", p.Type)
	assert.Equal(t, -73.99, p.Lon())
	assert.Equal(t, 40.58, p.Lat())
}
