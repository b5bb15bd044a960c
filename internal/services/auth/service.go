package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/lanterngame/internal/config"
	"github.com/mcoot/lanterngame/internal/dependencies/clock"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUsernameExists     = errors.New("username already exists")
)

// Session represents an authenticated session
type Session struct {
	Token     string
	PlayerID  model.PlayerID
	Player    model.Player
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is the subset of storage the auth service needs
type Store interface {
	storage.PlayerStore
	storage.TeamStore
}

// Service handles authentication, sessions and team membership
type Service struct {
	storage Store
	clock   clock.Clock
	logger  *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

var _ Roster = (*Service)(nil)

const defaultSessionDuration = 24 * time.Hour

// New creates a new auth Service
func New(store Store, clk clock.Clock, cfg config.Auth, log *logger.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaultSessionDuration
	}
	return &Service{
		storage:         store,
		clock:           clk,
		logger:          log.WithStr("service", "auth"),
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// CreateGuestPlayer creates an anonymous player and session
func (s *Service) CreateGuestPlayer(ctx context.Context, displayName string) (*Session, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, model.Invalid("displayName", "must not be empty")
	}

	player := &model.Player{
		ID:          model.PlayerID(s.generateID("p_")),
		DisplayName: displayName,
		IsGuest:     true,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info().Str("player_id", string(player.ID)).Msg("guest player created")
	return s.createSession(player), nil
}

// RegisterPlayer creates a registered player account and session
func (s *Service) RegisterPlayer(ctx context.Context, username, password, displayName string) (*Session, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)
	switch {
	case username == "":
		return nil, model.Invalid("username", "must not be empty")
	case password == "":
		return nil, model.Invalid("password", "must not be empty")
	case displayName == "":
		displayName = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	playerID := model.PlayerID(s.generateID("p_"))
	now := s.clock.Now()

	registeredPlayer := &model.RegisteredPlayer{
		PlayerID:     playerID,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The registration insert is the uniqueness check
	if err := s.storage.CreateRegisteredPlayer(ctx, registeredPlayer); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	player := &model.Player{
		ID:          playerID,
		DisplayName: displayName,
		IsGuest:     false,
		CreatedAt:   now,
	}
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info().Str("player_id", string(playerID)).Str("username", username).Msg("player registered")
	return s.createSession(player), nil
}

// Login authenticates a registered player and creates a session
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	rp, err := s.storage.GetRegisteredPlayerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rp.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	player, err := s.storage.GetPlayer(ctx, rp.PlayerID)
	if err != nil {
		return nil, err
	}

	return s.createSession(player), nil
}

// JoinTeam assigns the player to a team, replacing any previous membership
func (s *Service) JoinTeam(ctx context.Context, playerID model.PlayerID, teamID model.TeamID) (*model.Player, error) {
	if _, err := s.storage.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}

	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	player.TeamID = &teamID
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.refreshSessions(player)
	s.logger.Info().Str("player_id", string(playerID)).Int("team_id", int(teamID)).Msg("player joined team")
	return player, nil
}

// TeamOf returns the player's team or model.ErrNoTeam
func (s *Service) TeamOf(ctx context.Context, owner model.PlayerID) (model.TeamID, error) {
	player, err := s.storage.GetPlayer(ctx, owner)
	if err != nil {
		return 0, err
	}
	if player.TeamID == nil {
		return 0, model.ErrNoTeam
	}
	return *player.TeamID, nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// GetPlayer returns the player for a session token
func (s *Service) GetPlayer(token string) (*model.Player, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	player := session.Player
	return &player, nil
}

func (s *Service) createSession(player *model.Player) *Session {
	token := s.generateID("sess_")
	now := s.clock.Now()

	session := &Session{
		Token:     token,
		PlayerID:  player.ID,
		Player:    *player,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session
}

// refreshSessions replaces the cached player on every live session
func (s *Service) refreshSessions(player *model.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.PlayerID == player.ID {
			updated := *session
			updated.Player = *player
			s.sessions[token] = &updated
		}
	}
}

// generateID generates a random ID with a prefix
func (s *Service) generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("expired sessions cleaned")
	}
}
