package game

// Physics and table constants for the 8-ball core. The frontend renderer
// scales these to screen space; the simulation itself is unit-agnostic.

const (
	NumBalls = 16 // 0=cue, 1-7=solids, 8=eight, 9-15=stripes

	TableWidth   = 1000.0
	TableHeight  = 500.0
	BallRadius   = 10.0
	PocketRadius = 22.0

	// SubSteps bounds tunneling: at MaxShotPower a ball moves
	// MaxShotPower/SubSteps = 12.5 units per sub-step, under one diameter.
	SubSteps = 8

	WallRestitution = 0.9
	FrictionFactor  = 0.99
	// RestThreshold zeroes velocity components so balls come to exact rest
	// instead of creeping forever under multiplicative friction.
	RestThreshold = 0.02

	MaxShotPower = 100.0
	MinShotPower = 2.0

	// BreakSpot is where the cue ball starts and respawns after a scratch.
	BreakSpotX = 250.0
	BreakSpotY = 250.0
	// RackApex anchors the triangle of object balls.
	RackApexX = 700.0
	RackApexY = 250.0
)

// Table holds the playing-field geometry: axis-aligned cushions plus six
// pockets (four corners, two mid-rail).
type Table struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Pockets [6]Vec2 `json:"pockets"`
}

// NewTable builds the standard table geometry.
func NewTable() *Table {
	return &Table{
		Width:  TableWidth,
		Height: TableHeight,
		Pockets: [6]Vec2{
			{X: 0, Y: 0},
			{X: TableWidth / 2, Y: 0},
			{X: TableWidth, Y: 0},
			{X: 0, Y: TableHeight},
			{X: TableWidth / 2, Y: TableHeight},
			{X: TableWidth, Y: TableHeight},
		},
	}
}
