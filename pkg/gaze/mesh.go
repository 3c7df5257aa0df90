package gaze

// Face-mesh landmark indices (478-point mesh with refined iris landmarks).
const (
	MeshSize = 478

	leftEyeInner  = 133
	leftEyeOuter  = 33
	leftEyeTop    = 159
	leftEyeBottom = 145

	rightEyeInner  = 362
	rightEyeOuter  = 263
	rightEyeTop    = 386
	rightEyeBottom = 374
)

var (
	leftIris  = [...]int{474, 475, 476, 477}
	rightIris = [...]int{469, 470, 471, 472}
)

// MeshPoint is a face-mesh landmark normalized to [0,1] frame coordinates.
type MeshPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FromMesh builds a LandmarkFrame from a normalized face mesh, scaling
// coordinates to a width x height frame.
func FromMesh(points []MeshPoint, width, height int) (*LandmarkFrame, error) {
	if len(points) < MeshSize {
		return nil, ErrMeshTooShort
	}

	W, H := float64(width), float64(height)
	at := func(i int) Point {
		return Point{X: points[i].X * W, Y: points[i].Y * H}
	}
	ring := func(idx []int) []Point {
		out := make([]Point, len(idx))
		for i, j := range idx {
			out[i] = at(j)
		}
		return out
	}

	return &LandmarkFrame{
		Left: Eye{
			Inner:  at(leftEyeInner),
			Outer:  at(leftEyeOuter),
			Top:    at(leftEyeTop),
			Bottom: at(leftEyeBottom),
			Iris:   ring(leftIris[:]),
		},
		Right: Eye{
			Inner:  at(rightEyeInner),
			Outer:  at(rightEyeOuter),
			Top:    at(rightEyeTop),
			Bottom: at(rightEyeBottom),
			Iris:   ring(rightIris[:]),
		},
		Width:  width,
		Height: height,
	}, nil
}

// Mirror flips a frame horizontally, turning a raw camera feed into the
// selfie view the classifier expects.
func Mirror(f *LandmarkFrame) *LandmarkFrame {
	if f == nil {
		return nil
	}
	W := float64(f.Width)
	flip := func(p Point) Point { return Point{X: W - p.X, Y: p.Y} }
	flipEye := func(e Eye) Eye {
		out := Eye{
			Inner:  flip(e.Inner),
			Outer:  flip(e.Outer),
			Top:    flip(e.Top),
			Bottom: flip(e.Bottom),
			Iris:   make([]Point, len(e.Iris)),
		}
		for i, p := range e.Iris {
			out.Iris[i] = flip(p)
		}
		return out
	}
	return &LandmarkFrame{
		Left:   flipEye(f.Left),
		Right:  flipEye(f.Right),
		Width:  f.Width,
		Height: f.Height,
	}
}
