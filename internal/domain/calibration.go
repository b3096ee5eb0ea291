package domain

// Calibration maps raw ADC counts to a humidity ratio in [0, 1].
//
// The defaults describe an ADS1115 at gain 1 (full scale 4.096 V) feeding a
// sensor that outputs 0–3.3 V across its humidity range. Operators calibrate
// by overriding the three constants; the conversion stays linear.
type Calibration struct {
	ADCMax         int     `yaml:"adc_max"`
	ReferenceVolts float64 `yaml:"reference_volts"`
	SensorVolts    float64 `yaml:"sensor_volts"`
}

func DefaultCalibration() Calibration {
	return Calibration{
		ADCMax:         32767,
		ReferenceVolts: 4.096,
		SensorVolts:    3.3,
	}
}

func (c *Calibration) ApplyDefaults() {
	def := DefaultCalibration()
	if c.ADCMax == 0 {
		c.ADCMax = def.ADCMax
	}
	if c.ReferenceVolts == 0 {
		c.ReferenceVolts = def.ReferenceVolts
	}
	if c.SensorVolts == 0 {
		c.SensorVolts = def.SensorVolts
	}
}

// Convert turns raw ADC counts into a clamped humidity ratio.
func (c Calibration) Convert(raw int) float64 {
	volts := float64(raw) / float64(c.ADCMax) * c.ReferenceVolts
	ratio := volts / c.SensorVolts
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// Invert returns the raw counts that Convert maps to the given ratio.
// Used by the simulator to script humidity sequences.
func (c Calibration) Invert(ratio float64) int {
	volts := ratio * c.SensorVolts
	return int(volts / c.ReferenceVolts * float64(c.ADCMax))
}
