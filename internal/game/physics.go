package game

import "math"

// Ball is a single ball's physics state. Potted balls are out of play and
// never re-enter the collision set; the cue ball is the one exception, via
// respawn after a scratch or ball-in-hand placement.
type Ball struct {
	ID       int  `json:"id"`
	Position Vec2 `json:"position"`
	Velocity Vec2 `json:"velocity"`
	Potted   bool `json:"potted"`
}

// ShotTrace accumulates what happened during one shot: the first ball the
// cue ball struck and every ball that dropped. It is reset at the start of
// each shot and handed to the arbiter once the table settles.
type ShotTrace struct {
	// FirstContactID is -1 until the cue ball strikes another ball.
	FirstContactID int   `json:"first_contact_id"`
	Potted         []int `json:"potted"`
}

func NewShotTrace() *ShotTrace {
	return &ShotTrace{FirstContactID: -1}
}

// PottedContains reports whether the given ball dropped during this shot.
func (t *ShotTrace) PottedContains(id int) bool {
	for _, p := range t.Potted {
		if p == id {
			return true
		}
	}
	return false
}

// PhysicsEngine advances ball state one rendered frame at a time. It is a
// casual-game approximation, not an exact rigid-body solver: collisions that
// land in the same sub-step are resolved pair-by-pair in ascending index
// order rather than simultaneously.
type PhysicsEngine struct {
	table *Table
}

func NewPhysicsEngine(table *Table) *PhysicsEngine {
	return &PhysicsEngine{table: table}
}

// Step runs one frame of simulation (SubSteps sub-steps, then friction and
// rest thresholding) and reports whether any ball is still moving. trace may
// be nil when nobody cares about the shot outcome.
func (pe *PhysicsEngine) Step(balls *[NumBalls]Ball, trace *ShotTrace) bool {
	for s := 0; s < SubSteps; s++ {
		for i := range balls {
			b := &balls[i]
			if b.Potted {
				continue
			}
			b.Position = b.Position.Plus(b.Velocity.Times(1.0 / SubSteps))
			pe.collideWalls(b)
		}

		for i := range balls {
			pe.checkPockets(&balls[i], trace)
		}

		// Fixed pair order keeps same-sub-step pileups deterministic. The
		// cue ball is index 0, so its first recorded contact is the lowest
		// overlapping id in the earliest sub-step that produced one.
		for i := 0; i < NumBalls-1; i++ {
			for j := i + 1; j < NumBalls; j++ {
				pe.collidePair(&balls[i], &balls[j], trace)
			}
		}
	}

	moving := false
	for i := range balls {
		b := &balls[i]
		if b.Potted {
			continue
		}
		b.Velocity = b.Velocity.Times(FrictionFactor)
		if math.Abs(b.Velocity.X) < RestThreshold {
			b.Velocity.X = 0
		}
		if math.Abs(b.Velocity.Y) < RestThreshold {
			b.Velocity.Y = 0
		}
		if !b.Velocity.IsZero() {
			moving = true
		}
	}
	return moving
}

// collideWalls clamps the ball inside the cushions and reflects the
// offending velocity component, scaled by restitution.
func (pe *PhysicsEngine) collideWalls(b *Ball) {
	if b.Position.X < BallRadius {
		b.Position.X = BallRadius
		b.Velocity.X = -b.Velocity.X * WallRestitution
	} else if b.Position.X > pe.table.Width-BallRadius {
		b.Position.X = pe.table.Width - BallRadius
		b.Velocity.X = -b.Velocity.X * WallRestitution
	}
	if b.Position.Y < BallRadius {
		b.Position.Y = BallRadius
		b.Velocity.Y = -b.Velocity.Y * WallRestitution
	} else if b.Position.Y > pe.table.Height-BallRadius {
		b.Position.Y = pe.table.Height - BallRadius
		b.Velocity.Y = -b.Velocity.Y * WallRestitution
	}
}

func (pe *PhysicsEngine) checkPockets(b *Ball, trace *ShotTrace) {
	if b.Potted {
		return
	}
	for _, p := range pe.table.Pockets {
		if b.Position.DistanceTo(p) < PocketRadius {
			b.Potted = true
			b.Velocity = Vec2{}
			if trace != nil {
				trace.Potted = append(trace.Potted, b.ID)
			}
			return
		}
	}
}

// collidePair resolves an overlapping pair of active balls: each ball is
// pushed out by half the overlap along the collision normal, then the
// normal components of velocity are swapped (equal-mass elastic collision,
// tangential components untouched).
func (pe *PhysicsEngine) collidePair(a, b *Ball, trace *ShotTrace) {
	if a.Potted || b.Potted {
		return
	}
	delta := b.Position.Minus(a.Position)
	dist := delta.Magnitude()
	if dist >= 2*BallRadius {
		return
	}

	var normal Vec2
	if dist == 0 {
		// Degenerate exact overlap; separate along a fixed axis so the
		// outcome stays deterministic.
		normal = Vec2{X: 1, Y: 0}
	} else {
		normal = delta.Times(1.0 / dist)
	}

	half := (2*BallRadius - dist) / 2
	a.Position = a.Position.Minus(normal.Times(half))
	b.Position = b.Position.Plus(normal.Times(half))

	an := a.Velocity.Dot(normal)
	bn := b.Velocity.Dot(normal)
	a.Velocity = a.Velocity.Plus(normal.Times(bn - an))
	b.Velocity = b.Velocity.Plus(normal.Times(an - bn))

	if trace != nil && trace.FirstContactID < 0 && a.ID == 0 {
		trace.FirstContactID = b.ID
	}
}

// activeCount returns how many balls are still on the table.
func activeCount(balls *[NumBalls]Ball) int {
	n := 0
	for i := range balls {
		if !balls[i].Potted {
			n++
		}
	}
	return n
}
