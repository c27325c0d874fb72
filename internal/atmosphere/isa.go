// Package atmosphere implements the International Standard Atmosphere up to
// the lower stratosphere.
package atmosphere

import (
	"fmt"
	"math"
)

const (
	SeaLevelTemperature = 288.15   // K
	SeaLevelPressure    = 101325.0 // Pa
	LapseRate           = 0.0065   // K/m
	TropopauseAltitude  = 11000.0  // m
	TropopauseTemp      = 216.65   // K
	TropopausePressure  = 22632.0  // Pa
	GasConstant         = 287.0    // J/(kg·K)
	Gamma               = 1.4

	// MaxAltitude bounds the isothermal layer model.
	MaxAltitude = 20000.0
)

// State is the air state at one altitude.
type State struct {
	Altitude     float64
	Temperature  float64
	Pressure     float64
	Density      float64
	SpeedOfSound float64
}

// At evaluates the standard atmosphere at altitude metres.
func At(altitude float64) (State, error) {
	if math.IsNaN(altitude) || altitude < -500 || altitude > MaxAltitude {
		return State{}, fmt.Errorf("atmosphere: altitude %.1f m outside [-500, %.0f]", altitude, MaxAltitude)
	}

	var t, p float64
	if altitude <= TropopauseAltitude {
		t = SeaLevelTemperature - LapseRate*altitude
		p = SeaLevelPressure * math.Pow(t/SeaLevelTemperature, 5.2561)
	} else {
		t = TropopauseTemp
		p = TropopausePressure * math.Exp(-0.0001577*(altitude-TropopauseAltitude))
	}

	return State{
		Altitude:     altitude,
		Temperature:  t,
		Pressure:     p,
		Density:      p / (GasConstant * t),
		SpeedOfSound: math.Sqrt(Gamma * GasConstant * t),
	}, nil
}

// DynamicPressure is ½ρV².
func (s State) DynamicPressure(velocity float64) float64 {
	return 0.5 * s.Density * velocity * velocity
}
