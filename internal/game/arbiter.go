package game

// BallGroup identifies which half of the object balls a player owns.
type BallGroup string

const (
	GroupUnassigned BallGroup = "UNASSIGNED"
	GroupSolids     BallGroup = "SOLIDS"  // ids 1-7
	GroupStripes    BallGroup = "STRIPES" // ids 9-15
)

// ballGroup returns the group a ball id belongs to, or "" for the cue ball
// and the 8-ball.
func ballGroup(id int) BallGroup {
	switch {
	case id >= 1 && id <= 7:
		return GroupSolids
	case id >= 9 && id <= 15:
		return GroupStripes
	}
	return ""
}

func opposingGroup(g BallGroup) BallGroup {
	if g == GroupSolids {
		return GroupStripes
	}
	return GroupSolids
}

// FoulKind classifies the rule a shot broke.
type FoulKind string

const (
	FoulScratch        FoulKind = "SCRATCH"
	FoulNoContact      FoulKind = "NO_CONTACT"
	FoulWrongBallFirst FoulKind = "WRONG_BALL_FIRST"
	FoulEightBallFirst FoulKind = "EIGHT_BALL_FIRST"
)

// Foul describes a foul with a player-facing message.
type Foul struct {
	Kind    FoulKind `json:"kind"`
	Message string   `json:"message"`
}

// Verdict is the arbiter's ruling on one settled shot.
type Verdict struct {
	GameOver    bool  `json:"game_over"`
	ShooterWins bool  `json:"shooter_wins"`
	Foul        *Foul `json:"foul,omitempty"`
	// AssignedGroup is the group the shooter earned this shot on an open
	// table, or GroupUnassigned when the table stays as it was.
	AssignedGroup BallGroup `json:"assigned_group"`
	BallInHand    bool      `json:"ball_in_hand"`
	TurnPasses    bool      `json:"turn_passes"`
	// RespawnCue is set when the cue ball was pocketed and must return to
	// the table before play continues.
	RespawnCue bool `json:"respawn_cue"`
}

// remainingInGroup counts the shooter's object balls still on the table,
// ignoring any that dropped during the shot under evaluation.
func remainingInGroup(balls *[NumBalls]Ball, group BallGroup) int {
	n := 0
	for i := range balls {
		if !balls[i].Potted && ballGroup(balls[i].ID) == group {
			n++
		}
	}
	return n
}

// JudgeShot evaluates a settled shot against 8-ball rules. It is a pure
// decision: callers apply the verdict (respawn, group assignment, turn
// change) to their own state.
//
// One deliberate quirk carried over from the reference ruleset: a shot that
// both scratches and pots a legal ball is still a foul; the foul wins over
// the pot's benefit.
func JudgeShot(balls *[NumBalls]Ball, trace *ShotTrace, shooterGroup BallGroup, tableOpen bool) Verdict {
	cuePotted := trace.PottedContains(0)
	eightPotted := trace.PottedContains(8)

	// The 8-ball dropping ends the game one way or the other.
	if eightPotted {
		if cuePotted {
			return Verdict{GameOver: true, ShooterWins: false}
		}
		// Potting the 8 before clearing one's group loses. An unassigned
		// group can never be cleared, so an open-table 8-ball pot loses too.
		if shooterGroup == GroupUnassigned || remainingInGroup(balls, shooterGroup) > 0 {
			return Verdict{GameOver: true, ShooterWins: false}
		}
		return Verdict{GameOver: true, ShooterWins: true}
	}

	var foul *Foul
	switch {
	case cuePotted:
		foul = &Foul{Kind: FoulScratch, Message: "Scratch! Cue ball pocketed"}
	case trace.FirstContactID < 0:
		foul = &Foul{Kind: FoulNoContact, Message: "Foul: no ball hit"}
	case !tableOpen && ballGroup(trace.FirstContactID) == opposingGroup(shooterGroup):
		foul = &Foul{Kind: FoulWrongBallFirst, Message: "Foul: hit opponent's ball first"}
	case tableOpen && trace.FirstContactID == 8:
		foul = &Foul{Kind: FoulEightBallFirst, Message: "Foul: hit the 8-ball first on an open table"}
	}

	if foul != nil {
		return Verdict{
			Foul:          foul,
			AssignedGroup: GroupUnassigned,
			BallInHand:    true,
			TurnPasses:    true,
			RespawnCue:    cuePotted,
		}
	}

	// Legal shot. Work out what (if anything) the shooter earned.
	assigned := GroupUnassigned
	lowest := -1
	for _, id := range trace.Potted {
		if id == 0 || id == 8 {
			continue
		}
		if lowest < 0 || id < lowest {
			lowest = id
		}
	}

	if lowest < 0 {
		// Clean shot, nothing down: turn passes, no ball in hand.
		return Verdict{AssignedGroup: GroupUnassigned, TurnPasses: true}
	}

	group := shooterGroup
	if tableOpen {
		assigned = ballGroup(lowest)
		group = assigned
	}

	pottedOwn := false
	for _, id := range trace.Potted {
		if id == 0 || id == 8 {
			continue
		}
		if ballGroup(id) == group {
			pottedOwn = true
			break
		}
	}

	return Verdict{
		AssignedGroup: assigned,
		TurnPasses:    !pottedOwn,
	}
}
