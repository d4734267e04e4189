// Package monitor describes the stimulus displays and converts between
// visual degrees, pixels, frames and milliseconds.
package monitor

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrUnknownMonitor = errors.New("unknown monitor")

// Profile is a physical display as seen from the participant.
type Profile struct {
	Name        string  `koanf:"name"`
	WidthPx     int     `koanf:"width_px"`
	HeightPx    int     `koanf:"height_px"`
	WidthCM     float64 `koanf:"width_cm"`
	DistanceCM  float64 `koanf:"distance_cm"`
	ExpectedFPS int     `koanf:"expected_fps"`
}

// Builtin returns the lab displays known to the experiment.
func Builtin() map[string]Profile {
	return map[string]Profile{
		// personal laptop
		"latitude7490": {Name: "latitude7490", WidthPx: 1920, HeightPx: 1080, WidthCM: 30, DistanceCM: 50, ExpectedFPS: 60},
		// stimulus PC in the EEG lab
		"eizoforis": {Name: "eizoforis", WidthPx: 2560, HeightPx: 1440, WidthCM: 60, DistanceCM: 50, ExpectedFPS: 144},
		// personal desktop
		"benq": {Name: "benq", WidthPx: 2560, HeightPx: 1440, WidthCM: 59.5, DistanceCM: 50, ExpectedFPS: 144},
	}
}

// Lookup finds name in extra first, then in the builtin profiles.
func Lookup(name string, extra map[string]Profile) (Profile, error) {
	if p, ok := extra[name]; ok {
		if p.Name == "" {
			p.Name = name
		}
		return p, p.Validate()
	}
	if p, ok := Builtin()[name]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownMonitor, name, Names(extra))
}

// Names lists all known profile names, sorted.
func Names(extra map[string]Profile) []string {
	seen := map[string]bool{}
	for n := range Builtin() {
		seen[n] = true
	}
	for n := range extra {
		seen[n] = true
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (p Profile) Validate() error {
	if p.WidthPx <= 0 || p.HeightPx <= 0 {
		return fmt.Errorf("monitor %q: pixel size must be positive", p.Name)
	}
	if p.WidthCM <= 0 || p.DistanceCM <= 0 {
		return fmt.Errorf("monitor %q: width and distance must be positive", p.Name)
	}
	if p.ExpectedFPS <= 0 {
		return fmt.Errorf("monitor %q: expected fps must be positive", p.Name)
	}
	return nil
}

// DegToCM uses the small angle approximation, one degree spans
// distance*pi/180 centimeters.
func (p Profile) DegToCM(deg float64) float64 {
	return deg * math.Pi / 180 * p.DistanceCM
}

func (p Profile) CMToPix(cm float64) float64 {
	return cm * float64(p.WidthPx) / p.WidthCM
}

func (p Profile) DegToPix(deg float64) float64 {
	return p.CMToPix(p.DegToCM(deg))
}
