package game

import (
	"math"
	"math/rand"
	"testing"
)

func TestBotPlanShotDeterministicWithSeed(t *testing.T) {
	balls := NewRack()

	bp1 := NewBotPlanner(rand.New(rand.NewSource(42)))
	bp2 := NewBotPlanner(rand.New(rand.NewSource(42)))

	a1, p1 := bp1.PlanShot(&balls, GroupStripes)
	a2, p2 := bp2.PlanShot(&balls, GroupStripes)

	if a1 != a2 || p1 != p2 {
		t.Errorf("Same seed gave different plans: (%.6f,%.2f) vs (%.6f,%.2f)", a1, p1, a2, p2)
	}
}

func TestBotPowerStaysInBand(t *testing.T) {
	balls := NewRack()
	bp := NewBotPlanner(rand.New(rand.NewSource(7)))

	for i := 0; i < 50; i++ {
		_, power := bp.PlanShot(&balls, GroupSolids)
		if power < botMinPower || power > botMaxPower {
			t.Fatalf("Power %.2f outside [%.0f, %.0f]", power, botMinPower, botMaxPower)
		}
	}
}

func TestBotAimsAtNearestGroupBall(t *testing.T) {
	// Hand-built table: cue at the break spot, one solid close by, one far.
	var balls [NumBalls]Ball
	for i := range balls {
		balls[i] = Ball{ID: i, Potted: true}
	}
	balls[0] = Ball{ID: 0, Position: NewVec2(BreakSpotX, BreakSpotY)}
	balls[3] = Ball{ID: 3, Position: NewVec2(400, 250)}
	balls[5] = Ball{ID: 5, Position: NewVec2(900, 250)}
	balls[8] = Ball{ID: 8, Position: NewVec2(600, 100)}

	bp := NewBotPlanner(rand.New(rand.NewSource(1)))
	angle, _ := bp.PlanShot(&balls, GroupSolids)

	// Ball 3 sits dead right of the cue; jitter keeps the angle near zero.
	if math.Abs(angle) > botAimJitter+1e-9 {
		t.Errorf("Angle %.4f does not point at the nearest solid", angle)
	}
}

func TestBotSkipsOpponentBalls(t *testing.T) {
	// The nearest ball is a solid, but a stripes bot must aim past it.
	var balls [NumBalls]Ball
	for i := range balls {
		balls[i] = Ball{ID: i, Potted: true}
	}
	balls[0] = Ball{ID: 0, Position: NewVec2(100, 250)}
	balls[2] = Ball{ID: 2, Position: NewVec2(150, 250)}
	balls[12] = Ball{ID: 12, Position: NewVec2(100, 400)}
	balls[8] = Ball{ID: 8, Position: NewVec2(900, 100)}

	bp := NewBotPlanner(rand.New(rand.NewSource(9)))
	angle, _ := bp.PlanShot(&balls, GroupStripes)

	// Ball 12 is straight down from the cue: angle near pi/2.
	if math.Abs(angle-math.Pi/2) > botAimJitter+1e-9 {
		t.Errorf("Angle %.4f should point at the stripe below the cue", angle)
	}
}

func TestBotTargetsEightWhenGroupCleared(t *testing.T) {
	var balls [NumBalls]Ball
	for i := range balls {
		balls[i] = Ball{ID: i, Potted: true}
	}
	balls[0] = Ball{ID: 0, Position: NewVec2(500, 250)}
	balls[8] = Ball{ID: 8, Position: NewVec2(500, 100)}
	// A lone stripe remains, but the solids bot is done with its group.
	balls[14] = Ball{ID: 14, Position: NewVec2(600, 250)}

	bp := NewBotPlanner(rand.New(rand.NewSource(3)))
	angle, _ := bp.PlanShot(&balls, GroupSolids)

	// The 8-ball is straight up from the cue: angle near -pi/2.
	if math.Abs(angle+math.Pi/2) > botAimJitter+1e-9 {
		t.Errorf("Angle %.4f should point at the 8-ball", angle)
	}
}

func TestBotPlacementPrefersBreakSpot(t *testing.T) {
	balls := NewRack()
	balls[0].Potted = true

	bp := NewBotPlanner(rand.New(rand.NewSource(1)))
	spot := bp.PlaceCueBall(&balls)

	if spot.X != BreakSpotX || spot.Y != BreakSpotY {
		t.Errorf("Break spot is clear but placement was %+v", spot)
	}
}

func TestBotPlacementScansPastBlockers(t *testing.T) {
	balls := NewRack()
	balls[0].Potted = true
	// Park a ball on the break spot so the scan has to move right.
	balls[1].Position = NewVec2(BreakSpotX, BreakSpotY)

	bp := NewBotPlanner(rand.New(rand.NewSource(1)))
	spot := bp.PlaceCueBall(&balls)

	if !placementClear(&balls, spot) {
		t.Errorf("Placement %+v overlaps an active ball", spot)
	}
	if spot.X <= BreakSpotX {
		t.Errorf("Placement %+v did not scan past the blocker", spot)
	}
}

func TestPlacementClearRejectsCushionsAndOverlap(t *testing.T) {
	balls := NewRack()

	if placementClear(&balls, NewVec2(5, 250)) {
		t.Error("Position inside the left cushion should be rejected")
	}
	if placementClear(&balls, NewVec2(RackApexX, RackApexY)) {
		t.Error("Position on top of the rack apex should be rejected")
	}
	if !placementClear(&balls, NewVec2(100, 100)) {
		t.Error("Open felt should be accepted")
	}
}
