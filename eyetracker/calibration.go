package eyetracker

import "fmt"

type Point struct {
	X, Y float32
}

// CalibrationPoints returns the targets of a calibration in presentation
// order, inside the central calibration area of a w x h screen. HV5 is the
// center plus the four edge midpoints, HV9 adds the corners.
func CalibrationPoints(calType string, w, h int) ([]Point, error) {
	cx, cy := float32(w)/2, float32(h)/2
	dx := float32(w) * calibrationArea / 2
	dy := float32(h) * calibrationArea / 2

	grid := func(i, j int) Point {
		return Point{X: cx + float32(i)*dx, Y: cy + float32(j)*dy}
	}

	switch calType {
	case "HV5":
		return []Point{grid(0, 0), grid(0, -1), grid(0, 1), grid(-1, 0), grid(1, 0)}, nil
	case "HV9":
		return []Point{
			grid(0, 0), grid(0, -1), grid(0, 1), grid(-1, 0), grid(1, 0),
			grid(-1, -1), grid(1, -1), grid(-1, 1), grid(1, 1),
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrCalibrationType, calType)
}
