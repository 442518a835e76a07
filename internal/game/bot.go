package game

import (
	"math"
	"math/rand"
)

// Bot tuning. The planner is a greedy heuristic: nearest legal ball, a dash
// of aim jitter so it misses like a person, no obstruction analysis.
const (
	botAimJitter = 0.025 // radians, applied ±
	botMinPower  = 45.0
	botMaxPower  = 85.0
)

// BotPlanner picks shots for the machine opponent. All randomness flows
// through the injected source so a seeded session replays identically.
type BotPlanner struct {
	rng *rand.Rand
}

func NewBotPlanner(rng *rand.Rand) *BotPlanner {
	return &BotPlanner{rng: rng}
}

// PlanShot chooses a target and returns the angle and power to shoot with.
// If the bot's group is cleared (or it never got one and the table is bare)
// it goes for the 8-ball; otherwise it aims at the nearest candidate.
func (bp *BotPlanner) PlanShot(balls *[NumBalls]Ball, group BallGroup) (angle, power float64) {
	cue := &balls[0]

	target := bp.pickTarget(balls, group)
	if target == nil {
		// Nothing legal to aim at; tap the 8-ball region as a fallback.
		target = &balls[8]
	}

	dir := target.Position.Minus(cue.Position)
	angle = math.Atan2(dir.Y, dir.X)
	angle += (bp.rng.Float64()*2 - 1) * botAimJitter
	power = botMinPower + bp.rng.Float64()*(botMaxPower-botMinPower)
	return angle, power
}

func (bp *BotPlanner) pickTarget(balls *[NumBalls]Ball, group BallGroup) *Ball {
	cue := &balls[0]

	onEight := group != GroupUnassigned && remainingInGroup(balls, group) == 0
	if onEight {
		if balls[8].Potted {
			return nil
		}
		return &balls[8]
	}

	var best *Ball
	bestDist := math.MaxFloat64
	for i := range balls {
		b := &balls[i]
		if b.Potted || b.ID == 0 || b.ID == 8 {
			continue
		}
		if group != GroupUnassigned && ballGroup(b.ID) != group {
			continue
		}
		if d := cue.Position.DistanceTo(b.Position); d < bestDist {
			bestDist = d
			best = b
		}
	}
	return best
}

// PlaceCueBall returns a ball-in-hand spot for the bot: the break spot if it
// is clear, otherwise the first clear position scanning right along the head
// string. No search for an advantageous position, just a legal one.
func (bp *BotPlanner) PlaceCueBall(balls *[NumBalls]Ball) Vec2 {
	for x := BreakSpotX; x <= TableWidth-BallRadius; x += 2 * BallRadius {
		spot := NewVec2(x, BreakSpotY)
		if placementClear(balls, spot) {
			return spot
		}
	}
	// Pathological table; the center is as good a fallback as any.
	return NewVec2(TableWidth/2, TableHeight/2)
}

// placementClear reports whether a cue-ball position is inside the cushions
// and at least one diameter from every other active ball.
func placementClear(balls *[NumBalls]Ball, pos Vec2) bool {
	if pos.X < BallRadius || pos.X > TableWidth-BallRadius ||
		pos.Y < BallRadius || pos.Y > TableHeight-BallRadius {
		return false
	}
	for i := range balls {
		b := &balls[i]
		if b.Potted || b.ID == 0 {
			continue
		}
		if pos.DistanceTo(b.Position) < 2*BallRadius {
			return false
		}
	}
	return true
}
