package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/cuearena/backend/internal/config"
	"github.com/cuearena/backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// SessionManager owns every live session and the persistence hooks around
// them. The DB and Redis handles are optional: a nil handle just disables
// history recording or snapshot caching, never gameplay.
type SessionManager struct {
	sessions       map[string]*Session // session ID -> session
	tokenToSession map[string]string   // access token -> session ID
	db             *sqlx.DB
	rdb            *redis.Client
	config         *config.Config
	mu             sync.RWMutex
}

// Manager is the global session manager instance.
var Manager *SessionManager

// InitializeManager wires the global manager and starts its background
// workers.
func InitializeManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewSessionManager(db, rdb, cfg)
	go Manager.StartExpiryWorker(ctx)
}

func NewSessionManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	return &SessionManager{
		sessions:       make(map[string]*Session),
		tokenToSession: make(map[string]string),
		db:             db,
		rdb:            rdb,
		config:         cfg,
	}
}

func generateToken(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func generateSessionID() string {
	return "pool_" + generateToken(8)
}

// CreateSession racks a new human-versus-bot match. A zero seed picks one
// from the wall clock; any other seed replays the bot's exact behavior.
func (sm *SessionManager) CreateSession(stake int, seed int64) (*Session, error) {
	if sm.config != nil && stake < sm.config.MinStakeAmount {
		return nil, errors.New("stake below minimum")
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	params := SessionParams{
		Stake: stake,
		Rand:  mrand.New(mrand.NewSource(seed)),
	}
	if sm.config != nil {
		params.BotThinkDelay = time.Duration(sm.config.BotThinkDelayMs) * time.Millisecond
	}

	s := NewSession(generateSessionID(), generateToken(16), params)

	s.OnShot = func(seat Seat, shotNumber int, angle, power float64) {
		sm.RecordShot(s, seat, shotNumber, angle, power)
	}
	s.OnConclude = func(out Outcome) {
		sm.SaveFinalState(s, out)
	}

	sm.mu.Lock()
	sm.sessions[s.ID] = s
	sm.tokenToSession[s.Token] = s.ID
	sm.mu.Unlock()

	if sm.db != nil {
		_, err := sm.db.Exec(
			`INSERT INTO pool_sessions (session_id, session_token, stake_amount, status, created_at)
			 VALUES ($1, $2, $3, 'IN_PROGRESS', NOW())`,
			s.ID, s.Token, stake,
		)
		if err != nil {
			log.Printf("[DB] Failed to insert session %s: %v", s.ID, err)
		}
	}

	log.Printf("[MANAGER] Session created: %s (stake=%d seed=%d)", s.ID, stake, seed)
	return s, nil
}

func (sm *SessionManager) GetSession(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if s, ok := sm.sessions[id]; ok {
		return s, nil
	}
	return nil, errors.New("session not found")
}

func (sm *SessionManager) GetSessionByToken(token string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if id, ok := sm.tokenToSession[token]; ok {
		if s, ok := sm.sessions[id]; ok {
			return s, nil
		}
	}
	return nil, errors.New("session not found")
}

// RemoveSession closes a session and drops it from the registry.
func (sm *SessionManager) RemoveSession(id string) {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
		delete(sm.tokenToSession, s.Token)
	}
	sm.mu.Unlock()

	if ok {
		s.Close()
		log.Printf("[MANAGER] Session removed: %s", id)
	}
}

// ActiveSessionCount reports how many sessions are registered.
func (sm *SessionManager) ActiveSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// RecordShot appends one shot to the session's persistent history as JSONB.
func (sm *SessionManager) RecordShot(s *Session, seat Seat, shotNumber int, angle, power float64) {
	if sm == nil || sm.db == nil {
		return
	}
	shotData, err := json.Marshal(map[string]interface{}{
		"angle": angle,
		"power": power,
	})
	if err != nil {
		log.Printf("[DB] Failed to marshal shot data for %s: %v", s.ID, err)
		return
	}
	_, err = sm.db.Exec(
		`INSERT INTO pool_shots (session_id, seat, shot_number, shot_data, created_at)
		 VALUES ($1, $2, $3, $4::jsonb, NOW())`,
		s.ID, string(seat), shotNumber, string(shotData),
	)
	if err != nil {
		log.Printf("[DB] Failed to record shot %d for %s: %v", shotNumber, s.ID, err)
	}
}

// ErrHistoryUnavailable is returned when the manager runs without a database
// and persistent history cannot be read back.
var ErrHistoryUnavailable = errors.New("shot history unavailable")

// SessionRecord loads the persisted row for a session.
func (sm *SessionManager) SessionRecord(sessionID string) (*models.PoolSession, error) {
	if sm == nil || sm.db == nil {
		return nil, ErrHistoryUnavailable
	}
	var row models.PoolSession
	err := sm.db.Get(&row,
		`SELECT id, session_id, session_token, stake_amount, status, outcome, created_at, completed_at
		 FROM pool_sessions WHERE session_id = $1`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ShotHistory loads the persisted shots for a session, oldest first.
func (sm *SessionManager) ShotHistory(sessionID string) ([]models.PoolShot, error) {
	if sm == nil || sm.db == nil {
		return nil, ErrHistoryUnavailable
	}
	var shots []models.PoolShot
	err := sm.db.Select(&shots,
		`SELECT id, session_id, seat, shot_number, shot_data, created_at
		 FROM pool_shots WHERE session_id = $1 ORDER BY shot_number`,
		sessionID,
	)
	return shots, err
}

// SaveFinalState marks the session complete in the DB and caches the final
// snapshot in Redis for the host platform to read during settlement.
func (sm *SessionManager) SaveFinalState(s *Session, out Outcome) {
	if sm == nil {
		return
	}
	if sm.db != nil {
		_, err := sm.db.Exec(
			`UPDATE pool_sessions SET status = 'COMPLETED', outcome = $2, completed_at = NOW()
			 WHERE session_id = $1`,
			s.ID, string(out),
		)
		if err != nil {
			log.Printf("[DB] Failed to finalize session %s: %v", s.ID, err)
		}
	}
	sm.saveSessionToRedis(s)
	log.Printf("[MANAGER] Session %s concluded: %s", s.ID, out)
}

// saveSessionToRedis caches the latest snapshot under the session token.
func (sm *SessionManager) saveSessionToRedis(s *Session) {
	if sm.rdb == nil {
		return
	}
	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[REDIS] Failed to marshal snapshot for %s: %v", s.ID, err)
		return
	}
	key := "pool:" + s.Token + ":state"
	if err := sm.rdb.SetEx(context.Background(), key, data, time.Hour).Err(); err != nil {
		log.Printf("[REDIS] Failed to save snapshot for %s: %v", s.ID, err)
	}
}

// StartExpiryWorker sweeps abandoned sessions. Closing a session discards
// any pending bot turn, so an expired match can never wake up and keep
// simulating.
func (sm *SessionManager) StartExpiryWorker(ctx context.Context) {
	interval := 30 * time.Second
	maxIdle := 10 * time.Minute
	if sm.config != nil {
		if sm.config.ExpiryPollSeconds > 0 {
			interval = time.Duration(sm.config.ExpiryPollSeconds) * time.Second
		}
		if sm.config.SessionExpiryMinutes > 0 {
			maxIdle = time.Duration(sm.config.SessionExpiryMinutes) * time.Minute
		}
	}

	log.Printf("[EXPIRY] Worker started (poll=%s max_idle=%s)", interval, maxIdle)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[EXPIRY] Worker stopping")
			return
		case <-ticker.C:
			sm.sweepExpired(maxIdle)
		}
	}
}

func (sm *SessionManager) sweepExpired(maxIdle time.Duration) {
	sm.mu.RLock()
	var expired []string
	for id, s := range sm.sessions {
		state := s.State()
		if state == StateWon || state == StateLost {
			// Keep finished sessions around briefly for final-state reads.
			if time.Since(s.LastActivity()) > maxIdle/2 {
				expired = append(expired, id)
			}
			continue
		}
		if time.Since(s.LastActivity()) > maxIdle {
			expired = append(expired, id)
		}
	}
	sm.mu.RUnlock()

	for _, id := range expired {
		log.Printf("[EXPIRY] Session %s idle too long, removing", id)
		sm.RemoveSession(id)
	}
}
