package game

import (
	"testing"
	"time"

	"github.com/cuearena/backend/internal/config"
)

// newTestManager runs without DB, Redis or config: gameplay only.
func newTestManager() *SessionManager {
	return NewSessionManager(nil, nil, nil)
}

func TestManagerCreateAndLookup(t *testing.T) {
	sm := newTestManager()
	s, err := sm.CreateSession(0, 42)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer s.Close()

	if got, err := sm.GetSession(s.ID); err != nil || got != s {
		t.Errorf("GetSession(%s) = %v, %v", s.ID, got, err)
	}
	if got, err := sm.GetSessionByToken(s.Token); err != nil || got != s {
		t.Errorf("GetSessionByToken = %v, %v", got, err)
	}
	if n := sm.ActiveSessionCount(); n != 1 {
		t.Errorf("ActiveSessionCount = %d, want 1", n)
	}

	if _, err := sm.GetSession("pool_missing"); err == nil {
		t.Error("Lookup of unknown id should fail")
	}
	if _, err := sm.GetSessionByToken("bogus"); err == nil {
		t.Error("Lookup of unknown token should fail")
	}
}

func TestManagerDistinctTokens(t *testing.T) {
	sm := newTestManager()
	a, err := sm.CreateSession(0, 1)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer a.Close()
	b, err := sm.CreateSession(0, 1)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer b.Close()

	if a.ID == b.ID || a.Token == b.Token {
		t.Errorf("Sessions share an id or token: %s/%s %s/%s", a.ID, b.ID, a.Token, b.Token)
	}
}

func TestManagerEnforcesMinimumStake(t *testing.T) {
	sm := NewSessionManager(nil, nil, &config.Config{MinStakeAmount: 100})

	if _, err := sm.CreateSession(50, 1); err == nil {
		t.Error("Stake below the minimum should be rejected")
	}
	s, err := sm.CreateSession(100, 1)
	if err != nil {
		t.Fatalf("Stake at the minimum should be accepted: %v", err)
	}
	s.Close()
}

func TestManagerRemoveDiscardsPendingBotTurn(t *testing.T) {
	sm := newTestManager()
	s, err := sm.CreateSession(0, 7)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	// Hand the turn to the bot so a think timer is pending when the session
	// is torn down.
	s.thinkDelay = 20 * time.Millisecond
	s.state = StateSimulating
	s.trace = &ShotTrace{FirstContactID: 4}
	s.Advance()

	sm.RemoveSession(s.ID)

	if !s.Closed() {
		t.Error("RemoveSession should close the session")
	}
	if _, err := sm.GetSession(s.ID); err == nil {
		t.Error("Removed session still resolvable by id")
	}
	if _, err := sm.GetSessionByToken(s.Token); err == nil {
		t.Error("Removed session still resolvable by token")
	}

	time.Sleep(100 * time.Millisecond)
	if n := s.Snapshot().ShotNumber; n != 0 {
		t.Errorf("Closed session still shot: %d", n)
	}
}

func TestManagerSweepRemovesIdleSessions(t *testing.T) {
	sm := newTestManager()
	s, err := sm.CreateSession(0, 3)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	sm.sweepExpired(10 * time.Minute)
	if _, err := sm.GetSession(s.ID); err != nil {
		t.Fatal("Fresh session swept too early")
	}

	s.lastActivity = time.Now().Add(-time.Hour)
	sm.sweepExpired(10 * time.Minute)

	if _, err := sm.GetSession(s.ID); err == nil {
		t.Error("Idle session survived the sweep")
	}
	if !s.Closed() {
		t.Error("Swept session should be closed")
	}
}

func TestManagerSweepKeepsFinishedSessionsBriefly(t *testing.T) {
	sm := newTestManager()
	s, err := sm.CreateSession(0, 5)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer s.Close()
	s.Concede()

	sm.sweepExpired(10 * time.Minute)
	if _, err := sm.GetSession(s.ID); err != nil {
		t.Fatal("Finished session removed before the grace window")
	}

	// Finished sessions linger for half the idle window, then go.
	s.lastActivity = time.Now().Add(-6 * time.Minute)
	sm.sweepExpired(10 * time.Minute)
	if _, err := sm.GetSession(s.ID); err == nil {
		t.Error("Finished session survived past the grace window")
	}
}

func TestManagerHistoryUnavailableWithoutDB(t *testing.T) {
	sm := newTestManager()
	s, err := sm.CreateSession(0, 9)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	defer s.Close()

	if _, err := sm.SessionRecord(s.ID); err != ErrHistoryUnavailable {
		t.Errorf("SessionRecord err = %v, want %v", err, ErrHistoryUnavailable)
	}
	if _, err := sm.ShotHistory(s.ID); err != ErrHistoryUnavailable {
		t.Errorf("ShotHistory err = %v, want %v", err, ErrHistoryUnavailable)
	}
}
