package game

import "testing"

func TestRackHasAllBalls(t *testing.T) {
	balls := NewRack()

	seen := make(map[int]bool)
	for i := range balls {
		if balls[i].Potted {
			t.Errorf("Ball %d starts potted", balls[i].ID)
		}
		if !balls[i].Velocity.IsZero() {
			t.Errorf("Ball %d starts moving", balls[i].ID)
		}
		seen[balls[i].ID] = true
	}
	for id := 0; id < NumBalls; id++ {
		if !seen[id] {
			t.Errorf("Ball %d missing from rack", id)
		}
	}
}

func TestRackNoOverlaps(t *testing.T) {
	balls := NewRack()

	for i := 0; i < NumBalls-1; i++ {
		for j := i + 1; j < NumBalls; j++ {
			d := balls[i].Position.DistanceTo(balls[j].Position)
			if d < 2*BallRadius {
				t.Errorf("Balls %d and %d start %.2f apart (min %.2f)",
					balls[i].ID, balls[j].ID, d, 2*BallRadius)
			}
		}
	}
}

func TestRackKeyPositions(t *testing.T) {
	balls := NewRack()

	if balls[0].Position.X != BreakSpotX || balls[0].Position.Y != BreakSpotY {
		t.Errorf("Cue ball not on break spot: %+v", balls[0].Position)
	}
	if balls[1].Position.X != RackApexX || balls[1].Position.Y != RackApexY {
		t.Errorf("Apex ball not on rack apex: %+v", balls[1].Position)
	}

	// 8-ball in the center slot: on the rack's center line, behind the apex.
	if balls[8].Position.Y != RackApexY {
		t.Errorf("8-ball off the rack center line: %+v", balls[8].Position)
	}
	if balls[8].Position.X <= RackApexX {
		t.Errorf("8-ball not behind the apex: %+v", balls[8].Position)
	}

	// Back row corners hold one ball from each group.
	backX := balls[14].Position.X
	if balls[3].Position.X != backX {
		t.Fatalf("Expected 14 and 3 in the back row (x=%.1f vs %.1f)", balls[14].Position.X, balls[3].Position.X)
	}
	if ballGroup(14) == ballGroup(3) {
		t.Error("Back corners hold two balls from the same group")
	}
}

func TestRackDeterministic(t *testing.T) {
	a := NewRack()
	b := NewRack()
	for i := range a {
		if a[i].Position != b[i].Position {
			t.Errorf("Rack not deterministic for ball %d: %+v vs %+v", a[i].ID, a[i].Position, b[i].Position)
		}
	}
}
