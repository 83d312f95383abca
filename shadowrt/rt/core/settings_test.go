package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultShadowSettingsValid(t *testing.T) {
	s := DefaultShadowSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, mgl32.Vec3{0.1, 0.25, 0.5}, s.Directional.CascadeRatios())
}

func TestShadowSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *ShadowSettings)
	}{
		{"atlas not power of two", func(s *ShadowSettings) { s.Directional.AtlasSize = 1000 }},
		{"zero cascades", func(s *ShadowSettings) { s.Directional.CascadeCount = 0 }},
		{"five cascades", func(s *ShadowSettings) { s.Directional.CascadeCount = 5 }},
		{"unknown filter", func(s *ShadowSettings) { s.Directional.Filter = 9 }},
		{"unknown blend", func(s *ShadowSettings) { s.Directional.CascadeBlend = -1 }},
		{"ratio above one", func(s *ShadowSettings) { s.Directional.CascadeRatio2 = 1.5 }},
		{"non-positive distance", func(s *ShadowSettings) { s.MaxDistance = 0 }},
		{"zero distance fade", func(s *ShadowSettings) { s.DistanceFade = 0 }},
		{"zero cascade fade", func(s *ShadowSettings) { s.Directional.CascadeFade = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultShadowSettings()
			tc.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}

func TestLightTypeString(t *testing.T) {
	assert.Equal(t, "directional", LightTypeDirectional.String())
	assert.Equal(t, "point", LightTypePoint.String())
	assert.Equal(t, "unknown", LightType(7).String())
}
