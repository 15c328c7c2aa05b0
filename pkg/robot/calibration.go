package robot

import (
	"sort"
)

// MotorCalibration holds the servo ID and range of motion of one motor.
type MotorCalibration struct {
	ID       int `koanf:"id" yaml:"id" json:"id"`
	RangeMin int `koanf:"range_min" yaml:"range_min" json:"range_min"`
	RangeMax int `koanf:"range_max" yaml:"range_max" json:"range_max"`
}

// Calibration holds calibration data for all motors, keyed by motor name.
type Calibration map[MotorName]MotorCalibration

// Normalize converts a raw servo position to a normalized value in the range [-100, 100].
func (c MotorCalibration) Normalize(raw int) float64 {
	rangeSize := float64(c.RangeMax - c.RangeMin)
	if rangeSize == 0 {
		return 0
	}
	return (float64(raw-c.RangeMin)/rangeSize)*200 - 100
}

// Denormalize converts a normalized value [-100, 100] to a raw servo position.
// Values outside the range are clamped to it.
func (c MotorCalibration) Denormalize(norm float64) int {
	if norm < -100 {
		norm = -100
	} else if norm > 100 {
		norm = 100
	}
	rangeSize := float64(c.RangeMax - c.RangeMin)
	return int((norm+100)/200*rangeSize) + c.RangeMin
}

// Names returns the motor names in a stable order: SO-101 motors first,
// then any others alphabetically.
func (c Calibration) Names() []MotorName {
	names := make([]MotorName, 0, len(c))
	known := make(map[MotorName]bool)
	for _, name := range AllMotors() {
		known[name] = true
		if _, ok := c[name]; ok {
			names = append(names, name)
		}
	}
	var extra []MotorName
	for name := range c {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(names, extra...)
}

// MotorIDs returns the servo IDs for all motors, in Names order.
func (c Calibration) MotorIDs() []int {
	ids := make([]int, 0, len(c))
	for _, name := range c.Names() {
		ids = append(ids, c[name].ID)
	}
	return ids
}

// ByID returns motor name and calibration for a given servo ID.
func (c Calibration) ByID(id int) (MotorName, MotorCalibration, bool) {
	for name, mc := range c {
		if mc.ID == id {
			return name, mc, true
		}
	}
	return "", MotorCalibration{}, false
}
