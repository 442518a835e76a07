package game

import "fmt"

// NewRack places all 16 balls for the start of a match: cue ball on the
// break spot, object balls in the standard triangle anchored at the rack
// apex. The 8-ball sits in the center slot of the third row and the two back
// corners hold one solid and one stripe. Placement is fully deterministic;
// any randomness in play belongs to the bot, not the rack.
func NewRack() [NumBalls]Ball {
	var balls [NumBalls]Ball

	// Row pitch slightly over touching distance so no pair starts closer
	// than one ball diameter.
	dx := 1.782 * BallRadius
	dy := 1.05 * BallRadius

	at := func(id int, row, slot float64) {
		balls[id] = Ball{
			ID:       id,
			Position: NewVec2(RackApexX+row*dx, RackApexY+slot*dy),
		}
	}

	balls[0] = Ball{ID: 0, Position: NewVec2(BreakSpotX, BreakSpotY)}

	// Apex
	at(1, 0, 0)
	// Row 2
	at(2, 1, 1)
	at(15, 1, -1)
	// Row 3, 8-ball in the center slot
	at(8, 2, 0)
	at(5, 2, 2)
	at(10, 2, -2)
	// Row 4
	at(7, 3, 1)
	at(4, 3, 3)
	at(9, 3, -1)
	at(6, 3, -3)
	// Row 5, back corners are 14 (stripe) and 3 (solid)
	at(11, 4, 0)
	at(12, 4, 2)
	at(13, 4, -2)
	at(14, 4, 4)
	at(3, 4, -4)

	assertRackValid(&balls)
	return balls
}

// assertRackValid fails loudly on programming defects in the layout:
// duplicate ids, a missing cue or 8-ball, or overlapping start positions.
func assertRackValid(balls *[NumBalls]Ball) {
	seen := make(map[int]bool, NumBalls)
	for i := range balls {
		b := &balls[i]
		if b.ID < 0 || b.ID >= NumBalls || seen[b.ID] {
			panic(fmt.Sprintf("game: invalid or duplicate ball id %d in rack", b.ID))
		}
		seen[b.ID] = true
	}
	if !seen[0] || !seen[8] {
		panic("game: rack is missing the cue ball or the 8-ball")
	}
	for i := 0; i < NumBalls-1; i++ {
		for j := i + 1; j < NumBalls; j++ {
			if balls[i].Position.DistanceTo(balls[j].Position) < 2*BallRadius {
				panic(fmt.Sprintf("game: rack balls %d and %d overlap", balls[i].ID, balls[j].ID))
			}
		}
	}
}
