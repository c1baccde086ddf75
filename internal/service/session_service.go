package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"task-manager-be/internal/config"
	"task-manager-be/internal/dto"
	"task-manager-be/internal/entity"
	"task-manager-be/internal/pkg/clock"
	"task-manager-be/internal/pkg/logger"
	"task-manager-be/internal/repository/contract"
	"task-manager-be/pkg/events"
	pktNats "task-manager-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionInvalid     = errors.New("session expired or invalid")
)

const (
	sessionKeyPrefix = "session:"

	fieldProfile      = "profile"
	fieldToken        = "token"
	fieldIssuedAt     = "issued_at"
	fieldLastActivity = "last_activity"
	fieldExpiring     = "expiring"

	// Older clients stored the token under this name. It is written and
	// cleared alongside the canonical token key so no copy outlives the
	// session.
	fieldLegacyToken = "auth_token"
)

// SessionNotifier pushes lifecycle notices to connected clients. The hub
// implements it; a nil notifier disables notices.
type SessionNotifier interface {
	NotifySessionExpiring(sessionID string, user entity.UserProfile, timeLeft time.Duration)
	NotifySessionExpired(sessionID string, user entity.UserProfile)
}

type ISessionService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Extend(ctx context.Context, sessionID string) (*dto.SessionStatusResponse, error)
	Status(ctx context.Context, sessionID string) *dto.SessionStatusResponse
	Touch(ctx context.Context, sessionID string, at time.Time)
	Validate(ctx context.Context, sessionID string) (*entity.Session, bool)
	ValidateToken(ctx context.Context, token string) (*entity.Session, bool)
	SetNotifier(n SessionNotifier)
	StartMonitor()
	StopMonitor()
}

type sessionService struct {
	userRepo       contract.UserRepository
	store          contract.SessionStore
	cfg            config.SessionConfig
	clk            clock.Clock
	activity       IPublisherService
	eventPublisher *pktNats.Publisher
	log            logger.ILogger

	mu       sync.Mutex
	notifier SessionNotifier
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewSessionService(
	userRepo contract.UserRepository,
	store contract.SessionStore,
	cfg config.SessionConfig,
	clk clock.Clock,
	activity IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		userRepo:       userRepo,
		store:          store,
		cfg:            cfg,
		clk:            clk,
		activity:       activity,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *sessionService) SetNotifier(n SessionNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

func (s *sessionService) getNotifier() SessionNotifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifier
}

func (s *sessionService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.clk.Now()

	// One live session per user. A fresh login replaces any earlier one so
	// stale keys never accumulate in the store.
	s.destroyUserSessions(ctx, user.Id)

	sessionID := uuid.NewString()
	expiresAt := now.Add(s.cfg.Duration)

	token, err := s.signToken(sessionID, user, now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	profile := user.Profile()
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}

	ttl := s.cfg.Duration + time.Minute
	prefix := sessionKeyPrefix + sessionID + ":"
	writes := map[string]string{
		prefix + fieldProfile:      string(profileJSON),
		prefix + fieldToken:        token,
		prefix + fieldLegacyToken:  token,
		prefix + fieldIssuedAt:     now.UTC().Format(time.RFC3339Nano),
		prefix + fieldLastActivity: now.UTC().Format(time.RFC3339Nano),
	}
	for key, value := range writes {
		if err := s.store.Put(ctx, key, value, ttl); err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	s.publishEvent(ctx, events.NewSessionEvent(events.TypeSessionCreated, sessionID, user.Email, now))
	s.log.Info("session", "session created", map[string]interface{}{
		"session_id": sessionID,
		"email":      user.Email,
	})

	return &dto.LoginResponse{
		Token:     token,
		User:      profile,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *sessionService) Logout(ctx context.Context, sessionID string) error {
	session, _ := s.restore(ctx, sessionID)

	s.clearSession(ctx, sessionID)

	email := ""
	if session != nil {
		email = session.User.Email
	}
	s.publishEvent(ctx, events.NewSessionEvent(events.TypeSessionDestroyed, sessionID, email, s.clk.Now()))
	s.log.Info("session", "session destroyed", map[string]interface{}{"session_id": sessionID})
	return nil
}

// Extend resets the inactivity clock on an active session and clears the
// expiry warning. It does not move the hard expiry of the token.
func (s *sessionService) Extend(ctx context.Context, sessionID string) (*dto.SessionStatusResponse, error) {
	session, ok := s.Validate(ctx, sessionID)
	if !ok {
		return nil, ErrSessionInvalid
	}

	now := s.clk.Now()
	prefix := sessionKeyPrefix + sessionID + ":"
	ttl := session.ExpiresAt.Sub(now) + time.Minute

	if err := s.store.Put(ctx, prefix+fieldLastActivity, now.UTC().Format(time.RFC3339Nano), ttl); err != nil {
		return nil, fmt.Errorf("failed to extend session: %w", err)
	}
	_ = s.store.Delete(ctx, prefix+fieldExpiring)

	session.LastActivityAt = now
	session.Expiring = false

	if s.activity != nil {
		if err := s.activity.PublishActivity(ctx, sessionID, dto.ActivityKindExtend); err != nil {
			s.log.Warn("session", "failed to publish extend activity", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}
	s.publishEvent(ctx, events.NewSessionEvent(events.TypeSessionExtended, sessionID, session.User.Email, now))

	return s.statusOf(session, now), nil
}

func (s *sessionService) Status(ctx context.Context, sessionID string) *dto.SessionStatusResponse {
	session, ok := s.Validate(ctx, sessionID)
	if !ok {
		return &dto.SessionStatusResponse{IsAuthenticated: false}
	}
	return s.statusOf(session, s.clk.Now())
}

// Touch records activity for a session. Best effort, used by the activity
// consumer; an invalid session is simply ignored.
func (s *sessionService) Touch(ctx context.Context, sessionID string, at time.Time) {
	session, ok := s.Validate(ctx, sessionID)
	if !ok {
		return
	}

	prefix := sessionKeyPrefix + sessionID + ":"
	ttl := session.ExpiresAt.Sub(at) + time.Minute
	if ttl <= 0 {
		return
	}
	if err := s.store.Put(ctx, prefix+fieldLastActivity, at.UTC().Format(time.RFC3339Nano), ttl); err != nil {
		s.log.Warn("session", "failed to record activity", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

// Validate restores the session from the store and checks it against the
// current time. Any read or parse failure counts as no session: the check
// fails closed and the leftover keys are cleared.
func (s *sessionService) Validate(ctx context.Context, sessionID string) (*entity.Session, bool) {
	session, err := s.restore(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, errSessionNotFound) {
			s.log.Warn("session", "failed to restore session, treating as logged out", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			s.clearSession(ctx, sessionID)
		}
		return nil, false
	}

	if !session.Valid(s.clk.Now(), s.cfg.Duration) {
		s.expire(ctx, session)
		return nil, false
	}

	return session, true
}

func (s *sessionService) ValidateToken(ctx context.Context, token string) (*entity.Session, bool) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return nil, false
	}

	session, ok := s.Validate(ctx, sessionID)
	if !ok {
		return nil, false
	}
	// The token must be the one the store holds for this session. A token
	// from a replaced login is dead even if its signature still checks out.
	if session.Token != token {
		return nil, false
	}
	return session, true
}

func (s *sessionService) StartMonitor() {
	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return
	}
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// The cadence runs on the injected clock so tests can step it.
		tick := make(chan struct{}, 1)
		schedule := func() clock.Timer {
			return s.clk.AfterFunc(s.cfg.MonitorInterval, func() {
				select {
				case tick <- struct{}{}:
				default:
				}
			})
		}
		timer := schedule()
		for {
			select {
			case <-tick:
				s.sweep(context.Background())
				timer = schedule()
			case <-stopCh:
				timer.Stop()
				return
			}
		}
	}()

	s.log.Info("session", "session monitor started", map[string]interface{}{
		"interval": s.cfg.MonitorInterval.String(),
	})
}

func (s *sessionService) StopMonitor() {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.stopCh = nil
	s.mu.Unlock()

	s.wg.Wait()
}

// sweep walks every stored session once: expired sessions are destroyed,
// sessions inside the warning window are flagged and announced.
func (s *sessionService) sweep(ctx context.Context) {
	now := s.clk.Now()

	for _, sessionID := range s.listSessionIDs(ctx) {
		session, err := s.restore(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, errSessionNotFound) {
				s.clearSession(ctx, sessionID)
			}
			continue
		}

		if !session.Valid(now, s.cfg.Duration) {
			s.expire(ctx, session)
			continue
		}

		timeLeft := session.TimeUntilExpiry(now, s.cfg.Duration)
		if timeLeft <= s.cfg.WarningThreshold && !session.Expiring {
			s.markExpiring(ctx, session, timeLeft)
		}
	}
}

func (s *sessionService) markExpiring(ctx context.Context, session *entity.Session, timeLeft time.Duration) {
	prefix := sessionKeyPrefix + session.Id + ":"
	if err := s.store.Put(ctx, prefix+fieldExpiring, "true", timeLeft+time.Minute); err != nil {
		s.log.Warn("session", "failed to flag expiring session", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return
	}

	if n := s.getNotifier(); n != nil {
		n.NotifySessionExpiring(session.Id, session.User, timeLeft)
	}
	s.publishEvent(ctx, events.NewSessionEvent(events.TypeSessionExpiring, session.Id, session.User.Email, s.clk.Now()))
	s.log.Info("session", "session entering expiry warning window", map[string]interface{}{
		"session_id": session.Id,
		"time_left":  timeLeft.String(),
	})
}

func (s *sessionService) expire(ctx context.Context, session *entity.Session) {
	s.clearSession(ctx, session.Id)

	if n := s.getNotifier(); n != nil {
		n.NotifySessionExpired(session.Id, session.User)
	}
	s.publishEvent(ctx, events.NewSessionEvent(events.TypeSessionExpired, session.Id, session.User.Email, s.clk.Now()))
	s.log.Info("session", "session expired", map[string]interface{}{"session_id": session.Id})
}

var errSessionNotFound = errors.New("session not found")

func (s *sessionService) restore(ctx context.Context, sessionID string) (*entity.Session, error) {
	prefix := sessionKeyPrefix + sessionID + ":"

	profileJSON, found, err := s.store.Get(ctx, prefix+fieldProfile)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errSessionNotFound
	}

	token, found, err := s.store.Get(ctx, prefix+fieldToken)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("session %s has no token", sessionID)
	}

	issuedRaw, found, err := s.store.Get(ctx, prefix+fieldIssuedAt)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("session %s has no issue time", sessionID)
	}

	activityRaw, found, err := s.store.Get(ctx, prefix+fieldLastActivity)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("session %s has no activity time", sessionID)
	}

	var profile entity.UserProfile
	if err := json.Unmarshal([]byte(profileJSON), &profile); err != nil {
		return nil, fmt.Errorf("corrupt session profile: %w", err)
	}

	issuedAt, err := time.Parse(time.RFC3339Nano, issuedRaw)
	if err != nil {
		return nil, fmt.Errorf("corrupt session issue time: %w", err)
	}
	lastActivity, err := time.Parse(time.RFC3339Nano, activityRaw)
	if err != nil {
		return nil, fmt.Errorf("corrupt session activity time: %w", err)
	}

	expiring := false
	if value, found, err := s.store.Get(ctx, prefix+fieldExpiring); err == nil && found {
		expiring = value == "true"
	}

	return &entity.Session{
		Id:             sessionID,
		User:           profile,
		Token:          token,
		IssuedAt:       issuedAt,
		ExpiresAt:      issuedAt.Add(s.cfg.Duration),
		LastActivityAt: lastActivity,
		Expiring:       expiring,
	}, nil
}

func (s *sessionService) clearSession(ctx context.Context, sessionID string) {
	prefix := sessionKeyPrefix + sessionID + ":"
	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		s.log.Warn("session", "failed to list session keys for cleanup", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("session", "failed to delete session key", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
}

func (s *sessionService) destroyUserSessions(ctx context.Context, userID uuid.UUID) {
	for _, sessionID := range s.listSessionIDs(ctx) {
		session, err := s.restore(ctx, sessionID)
		if err != nil {
			continue
		}
		if session.User.Id == userID {
			s.clearSession(ctx, sessionID)
		}
	}
}

func (s *sessionService) listSessionIDs(ctx context.Context) []string {
	keys, err := s.store.Keys(ctx, sessionKeyPrefix)
	if err != nil {
		s.log.Warn("session", "failed to list session keys", map[string]interface{}{"error": err.Error()})
		return nil
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, key := range keys {
		rest := strings.TrimPrefix(key, sessionKeyPrefix)
		id, _, ok := strings.Cut(rest, ":")
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (s *sessionService) signToken(sessionID string, user *entity.User, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid":   sessionID,
		"email": user.Email,
		"name":  user.FullName,
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *sessionService) statusOf(session *entity.Session, now time.Time) *dto.SessionStatusResponse {
	user := session.User
	return &dto.SessionStatusResponse{
		IsAuthenticated: true,
		SessionExpiring: session.Expiring,
		TimeLeftSeconds: int64(session.TimeUntilExpiry(now, s.cfg.Duration).Seconds()),
		User:            &user,
	}
}

func (s *sessionService) publishEvent(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.log.Warn("session", "failed to publish lifecycle event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
