package config

import (
	"fmt"

	"github.com/gridsmith/powerplan/core/profile"
)

// ProfilesConfig tunes the seeded synthetic hourly shapes used by the
// dispatch simulation. Identical settings always reproduce identical series,
// so pinning seeds here pins every dispatch result.
type ProfilesConfig struct {
	Load  profile.LoadOptions  `json:"load"`
	Solar profile.SolarOptions `json:"solar"`
}

// SetDefaults applies fallback values for optional fields.
func (c *ProfilesConfig) SetDefaults() {
	def := profile.DefaultLoadOptions()
	if c.Load.BaseFraction == 0 {
		c.Load.BaseFraction = def.BaseFraction
	}
	if c.Load.DiurnalSwing == 0 {
		c.Load.DiurnalSwing = def.DiurnalSwing
	}
	if c.Load.NoiseAmplitude == 0 {
		c.Load.NoiseAmplitude = def.NoiseAmplitude
	}
	if c.Load.Seed == 0 {
		c.Load.Seed = def.Seed
	}
	if c.Solar.Seed == 0 {
		c.Solar.Seed = profile.DefaultSolarOptions().Seed
	}
}

// Validate checks the shape parameter ranges.
func (c ProfilesConfig) Validate() error {
	if c.Load.BaseFraction <= 0 || c.Load.BaseFraction > 1 {
		return fmt.Errorf("load base_fraction must be in (0,1]")
	}
	if c.Load.DiurnalSwing < 0 || c.Load.DiurnalSwing > 1 {
		return fmt.Errorf("load diurnal_swing must be in [0,1]")
	}
	if c.Load.NoiseAmplitude < 0 || c.Load.NoiseAmplitude > 1 {
		return fmt.Errorf("load noise_amplitude must be in [0,1]")
	}
	return nil
}
