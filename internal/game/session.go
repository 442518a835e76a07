package game

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Seat identifies a shooter within a session.
type Seat string

const (
	SeatLocal Seat = "LOCAL"
	SeatBot   Seat = "BOT"
)

func (s Seat) other() Seat {
	if s == SeatLocal {
		return SeatBot
	}
	return SeatLocal
}

// SessionState is the session's current phase.
type SessionState string

const (
	StateAwaitingShot SessionState = "AWAITING_SHOT"
	StateSimulating   SessionState = "SIMULATING"
	StateArbitrating  SessionState = "ARBITRATING"
	StateBallInHand   SessionState = "BALL_IN_HAND"
	StateWon          SessionState = "WON"
	StateLost         SessionState = "LOST"
)

// Outcome is the terminal result from the local player's perspective.
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
)

var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrWrongState       = errors.New("action not valid in current state")
	ErrInvalidPlacement = errors.New("invalid cue ball placement")
)

// SessionParams tunes a session. Zero values fall back to sensible defaults;
// tests inject a tiny think delay and a fixed seed.
type SessionParams struct {
	Stake         int
	BotThinkDelay time.Duration
	Rand          *rand.Rand
}

// Snapshot is the read-only view handed to the presentation layer each frame
// or on state change.
type Snapshot struct {
	State      SessionState `json:"state"`
	Shooter    Seat         `json:"shooter"`
	Status     string       `json:"status"`
	Balls      []Ball       `json:"balls"`
	LocalGroup BallGroup    `json:"local_group"`
	BotGroup   BallGroup    `json:"bot_group"`
	BallInHand bool         `json:"ball_in_hand"`
	ShotNumber int          `json:"shot_number"`
	Stake      int          `json:"stake"`
}

// Session is the state machine for one human-versus-bot 8-ball match. All
// entry points lock the session, so the physics step, the bot timer and the
// transport layer can never mutate ball state concurrently.
type Session struct {
	ID    string
	Token string

	mu         sync.Mutex
	balls      [NumBalls]Ball
	engine     *PhysicsEngine
	bot        *BotPlanner
	state      SessionState
	shooter    Seat
	localGroup BallGroup
	botGroup   BallGroup
	trace      *ShotTrace
	status     string
	shotNumber int
	stake      int

	thinkDelay time.Duration
	botTimer   *time.Timer
	closed     bool
	concluded  bool

	createdAt    time.Time
	lastActivity time.Time

	// OnConclude fires exactly once when the session reaches a terminal
	// state. The host settles stakes; this core only reports the result.
	OnConclude func(Outcome)
	// OnShot fires whenever a shot is committed, for history recording.
	OnShot func(seat Seat, shotNumber int, angle, power float64)
}

// NewSession racks the balls and seats the local player to break.
func NewSession(id, token string, params SessionParams) *Session {
	rng := params.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	delay := params.BotThinkDelay
	if delay == 0 {
		delay = 1200 * time.Millisecond
	}

	now := time.Now()
	s := &Session{
		ID:           id,
		Token:        token,
		balls:        NewRack(),
		engine:       NewPhysicsEngine(NewTable()),
		bot:          NewBotPlanner(rng),
		state:        StateAwaitingShot,
		shooter:      SeatLocal,
		localGroup:   GroupUnassigned,
		botGroup:     GroupUnassigned,
		status:       "Your turn to break",
		stake:        params.Stake,
		thinkDelay:   delay,
		createdAt:    now,
		lastActivity: now,
	}
	return s
}

// Shoot commits the local player's shot. Valid only while awaiting the local
// shot with no ball-in-hand pending. Power below the minimum threshold is a
// cancelled gesture, not an error.
func (s *Session) Shoot(angle, power float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateAwaitingShot {
		return ErrWrongState
	}
	if s.shooter != SeatLocal {
		return ErrNotYourTurn
	}
	if power < MinShotPower {
		return nil
	}
	if power > MaxShotPower {
		power = MaxShotPower
	}

	s.beginShot(SeatLocal, angle, power)
	return nil
}

// PlaceCueBall places the cue ball for a local ball-in-hand. Out-of-bounds
// or overlapping positions are rejected as recoverable errors.
func (s *Session) PlaceCueBall(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateBallInHand || s.shooter != SeatLocal {
		return ErrWrongState
	}

	pos := NewVec2(x, y)
	if !placementClear(&s.balls, pos) {
		return ErrInvalidPlacement
	}

	s.balls[0] = Ball{ID: 0, Position: pos}
	s.state = StateAwaitingShot
	s.status = "Your turn"
	s.lastActivity = time.Now()
	log.Printf("[SESSION] %s cue ball placed at (%.1f, %.1f)", s.ID, x, y)
	return nil
}

// Advance runs one render tick. While simulating it steps the physics and,
// once the table settles, arbitrates the shot and transitions. Outside of
// Simulating it is a cheap no-op, so the driver can tick unconditionally.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateSimulating {
		return
	}
	if !s.engine.Step(&s.balls, s.trace) {
		s.resolveShot()
	}
}

// Concede ends the session with a local loss.
func (s *Session) Concede() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.isTerminal() {
		return
	}
	s.stopBotTimer()
	s.state = StateLost
	s.status = "You conceded"
	log.Printf("[SESSION] %s conceded by local player", s.ID)
	s.conclude(OutcomeLoss)
}

// Close tears the session down: the pending bot turn (if any) is discarded
// and no further physics steps will run. Safe to call in any state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopBotTimer()
	log.Printf("[SESSION] %s closed (state=%s)", s.ID, s.state)
}

// Snapshot returns a copy of everything the presentation layer draws.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	balls := make([]Ball, 0, NumBalls)
	for i := range s.balls {
		if !s.balls[i].Potted {
			balls = append(balls, s.balls[i])
		}
	}
	return Snapshot{
		State:      s.state,
		Shooter:    s.shooter,
		Status:     s.status,
		Balls:      balls,
		LocalGroup: s.localGroup,
		BotGroup:   s.botGroup,
		BallInHand: s.state == StateBallInHand,
		ShotNumber: s.shotNumber,
		Stake:      s.stake,
	}
}

// State returns the current phase without copying ball state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// LastActivity reports when the session last saw a meaningful action.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// === internals (callers hold s.mu) ===

// conclude emits the terminal outcome exactly once. The callback runs on its
// own goroutine so downstream settlement never blocks the session lock.
func (s *Session) conclude(out Outcome) {
	if s.concluded {
		return
	}
	s.concluded = true
	s.stopBotTimer()
	s.lastActivity = time.Now()
	if cb := s.OnConclude; cb != nil {
		go cb(out)
	}
}

func (s *Session) isTerminal() bool {
	return s.state == StateWon || s.state == StateLost
}

func (s *Session) beginShot(seat Seat, angle, power float64) {
	s.trace = NewShotTrace()
	s.balls[0].Velocity = NewVec2(math.Cos(angle)*power, math.Sin(angle)*power)
	s.state = StateSimulating
	s.shotNumber++
	s.lastActivity = time.Now()
	s.status = "Balls rolling..."
	log.Printf("[SESSION] %s shot #%d by %s (angle=%.3f power=%.1f)", s.ID, s.shotNumber, seat, angle, power)

	if cb := s.OnShot; cb != nil {
		n := s.shotNumber
		go cb(seat, n, angle, power)
	}
}

// resolveShot hands the settled table to the arbiter and applies its ruling.
func (s *Session) resolveShot() {
	s.state = StateArbitrating

	shooterGroup := s.groupOf(s.shooter)
	tableOpen := s.localGroup == GroupUnassigned && s.botGroup == GroupUnassigned

	v := JudgeShot(&s.balls, s.trace, shooterGroup, tableOpen)

	if v.AssignedGroup != GroupUnassigned {
		s.assignGroups(s.shooter, v.AssignedGroup)
	}
	if v.RespawnCue {
		s.respawnCueBall()
	}

	if v.GameOver {
		winner := s.shooter
		if !v.ShooterWins {
			winner = s.shooter.other()
		}
		if winner == SeatLocal {
			s.state = StateWon
			s.status = "You sank the 8-ball, you win!"
			if !v.ShooterWins {
				s.status = "Opponent lost on the 8-ball, you win!"
			}
			s.conclude(OutcomeWin)
		} else {
			s.state = StateLost
			s.status = "You lost on the 8-ball"
			if !v.ShooterWins {
				s.status = "8-ball down too early, you lose"
				if s.shooter == SeatBot {
					s.status = "Opponent sank the 8-ball, you lose"
				}
			}
			s.conclude(OutcomeLoss)
		}
		log.Printf("[SESSION] %s over: winner=%s shot=%d", s.ID, winner, s.shotNumber)
		return
	}

	next := s.shooter
	if v.TurnPasses {
		next = s.shooter.other()
	}

	if v.BallInHand {
		s.shooter = next
		s.state = StateBallInHand
		s.status = s.foulStatus(v.Foul, next)
		if next == SeatBot {
			// The bot places and shoots in one scheduled turn.
			s.armBotTimer()
		}
		return
	}

	s.toAwaitingShot(next, v)
}

func (s *Session) toAwaitingShot(next Seat, v Verdict) {
	s.shooter = next
	s.state = StateAwaitingShot
	switch {
	case next == SeatLocal && !v.TurnPasses:
		s.status = "Nice pot, shoot again"
	case next == SeatLocal:
		s.status = "Your turn"
	default:
		s.status = "Opponent is lining up a shot"
	}
	if v.AssignedGroup != GroupUnassigned {
		s.status = fmt.Sprintf("%s (you are %s)", s.status, s.localGroup)
	}
	if next == SeatBot {
		s.armBotTimer()
	}
}

func (s *Session) foulStatus(f *Foul, next Seat) string {
	msg := "Foul"
	if f != nil {
		msg = f.Message
	}
	if next == SeatLocal {
		return msg + ": ball in hand, place the cue ball"
	}
	return msg + ": opponent has ball in hand"
}

func (s *Session) groupOf(seat Seat) BallGroup {
	if seat == SeatLocal {
		return s.localGroup
	}
	return s.botGroup
}

// assignGroups locks in the shooter's group and gives the opponent the
// complement. Assignment happens at most once per match.
func (s *Session) assignGroups(shooter Seat, group BallGroup) {
	if s.localGroup != GroupUnassigned || s.botGroup != GroupUnassigned {
		panic("game: ball groups assigned twice")
	}
	if shooter == SeatLocal {
		s.localGroup = group
		s.botGroup = opposingGroup(group)
	} else {
		s.botGroup = group
		s.localGroup = opposingGroup(group)
	}
	log.Printf("[SESSION] %s groups assigned: local=%s bot=%s", s.ID, s.localGroup, s.botGroup)
}

// respawnCueBall returns a pocketed cue ball to the table at the break spot,
// nudged right if the spot is occupied. The incoming player still gets ball
// in hand; this just guarantees the cue is never permanently lost.
func (s *Session) respawnCueBall() {
	s.balls[0].Potted = false
	s.balls[0].Velocity = Vec2{}
	s.balls[0].Position = s.bot.PlaceCueBall(&s.balls)
}

func (s *Session) armBotTimer() {
	if s.closed {
		return
	}
	s.stopBotTimer()
	s.botTimer = time.AfterFunc(s.thinkDelay, s.botTakeTurn)
}

func (s *Session) stopBotTimer() {
	if s.botTimer != nil {
		s.botTimer.Stop()
		s.botTimer = nil
	}
}

// botTakeTurn fires from the think-delay timer: place the cue ball if the
// bot holds ball-in-hand, then plan and commit a shot. A session closed or
// already resolved between scheduling and firing is left untouched.
func (s *Session) botTakeTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.isTerminal() || s.shooter != SeatBot {
		return
	}

	if s.state == StateBallInHand {
		s.balls[0] = Ball{ID: 0, Position: s.bot.PlaceCueBall(&s.balls)}
	} else if s.state != StateAwaitingShot {
		return
	}

	angle, power := s.bot.PlanShot(&s.balls, s.botGroup)
	s.beginShot(SeatBot, angle, power)
}
