package celshade

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gekko3d/celshade/shadowrt/rt/core"
)

var ErrInvalidAsset = errors.New("invalid pipeline asset")

// PipelineAsset is the render pipeline configuration: batching switches,
// the cel-shading light ramp and the shadow settings.
type PipelineAsset struct {
	// The batching switches belong to the scene draw and are carried so
	// assets round-trip; the shadow pass only logs them.
	UseDynamicBatching bool `yaml:"use_dynamic_batching"`
	UseGPUInstancing   bool `yaml:"use_gpu_instancing"`
	UseSRPBatcher      bool `yaml:"use_srp_batcher"`

	DefaultShadowBrightness float32 `yaml:"default_shadow_brightness"`
	BrightnessMultiplier    float32 `yaml:"brightness_multiplier"`
	ShadowThreshold         float32 `yaml:"shadow_threshold"`

	Shadows core.ShadowSettings `yaml:"shadows"`
}

func DefaultPipelineAsset() PipelineAsset {
	return PipelineAsset{
		UseDynamicBatching:      true,
		UseGPUInstancing:        true,
		UseSRPBatcher:           true,
		DefaultShadowBrightness: 0.1,
		BrightnessMultiplier:    1.0,
		ShadowThreshold:         0.15,
		Shadows:                 core.DefaultShadowSettings(),
	}
}

// ParsePipelineAsset decodes YAML over the defaults, so a document only
// needs the fields it changes. Unknown fields are rejected.
func ParsePipelineAsset(data []byte) (PipelineAsset, error) {
	asset := DefaultPipelineAsset()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&asset); err != nil && !errors.Is(err, io.EOF) {
		return PipelineAsset{}, fmt.Errorf("failed to decode pipeline asset: %w", err)
	}
	if err := asset.Validate(); err != nil {
		return PipelineAsset{}, err
	}
	return asset, nil
}

func LoadPipelineAsset(path string) (PipelineAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PipelineAsset{}, fmt.Errorf("failed to read pipeline asset: %w", err)
	}
	asset, err := ParsePipelineAsset(data)
	if err != nil {
		return PipelineAsset{}, fmt.Errorf("%s: %w", path, err)
	}
	return asset, nil
}

func (a PipelineAsset) Validate() error {
	if a.DefaultShadowBrightness < 0 || a.DefaultShadowBrightness > 1 {
		return fmt.Errorf("%w: default shadow brightness %f out of range [0,1]", ErrInvalidAsset, a.DefaultShadowBrightness)
	}
	if a.BrightnessMultiplier < 0 {
		return fmt.Errorf("%w: negative brightness multiplier %f", ErrInvalidAsset, a.BrightnessMultiplier)
	}
	if a.ShadowThreshold < 0 || a.ShadowThreshold > 1 {
		return fmt.Errorf("%w: shadow threshold %f out of range [0,1]", ErrInvalidAsset, a.ShadowThreshold)
	}
	if err := a.Shadows.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, err)
	}
	return nil
}

// Marshal encodes the asset as YAML.
func (a PipelineAsset) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
