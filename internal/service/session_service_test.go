package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"task-manager-be/internal/config"
	"task-manager-be/internal/dto"
	"task-manager-be/internal/entity"
	"task-manager-be/internal/pkg/clock"
	"task-manager-be/internal/repository/memory"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type recordingNotifier struct {
	mu       sync.Mutex
	expiring []string
	expired  []string
}

func (n *recordingNotifier) NotifySessionExpiring(sessionID string, _ entity.UserProfile, _ time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expiring = append(n.expiring, sessionID)
}

func (n *recordingNotifier) NotifySessionExpired(sessionID string, _ entity.UserProfile) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired = append(n.expired, sessionID)
}

type recordingActivity struct {
	mu    sync.Mutex
	kinds []string
}

func (a *recordingActivity) PublishActivity(_ context.Context, _, kind string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.kinds = append(a.kinds, kind)
	return nil
}

func (a *recordingActivity) published() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.kinds...)
}

type sessionFixture struct {
	svc      *sessionService
	store    *memory.SessionStore
	clk      *clock.Mock
	notifier *recordingNotifier
	activity *recordingActivity
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	userRepo := memory.NewUserRepository()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(context.Background(), &entity.User{
		Id:           uuid.New(),
		Email:        "demo@taskman.local",
		FullName:     "Demo User",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}))

	store := memory.NewSessionStore()
	// Anchor the mock at real now: token signatures embed absolute expiry
	// claims, and the JWT library checks those against the wall clock.
	clk := clock.NewMock(time.Now().UTC())
	notifier := &recordingNotifier{}

	cfg := config.SessionConfig{
		Secret:           "test-secret",
		Duration:         30 * time.Minute,
		WarningThreshold: 5 * time.Minute,
		MonitorInterval:  time.Minute,
	}

	activity := &recordingActivity{}
	svc := NewSessionService(userRepo, store, cfg, clk, activity, nil, nopLogger{}).(*sessionService)
	svc.SetNotifier(notifier)

	return &sessionFixture{svc: svc, store: store, clk: clk, notifier: notifier, activity: activity}
}

func (f *sessionFixture) login(t *testing.T) *dto.LoginResponse {
	t.Helper()
	res, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "demo@taskman.local",
		Password: "password123",
	})
	require.NoError(t, err)
	return res
}

func TestLoginIssuesValidSession(t *testing.T) {
	f := newSessionFixture(t)

	res := f.login(t)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "demo@taskman.local", res.User.Email)

	session, ok := f.svc.ValidateToken(context.Background(), res.Token)
	require.True(t, ok)
	assert.Equal(t, "Demo User", session.User.FullName)
	assert.False(t, session.Expiring)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "demo@taskman.local",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@taskman.local",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionSurvivesWithActivity(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res := f.login(t)
	session, ok := f.svc.ValidateToken(ctx, res.Token)
	require.True(t, ok)

	// Activity at T+28min, checked at T+29min: still inside both windows.
	f.clk.Advance(28 * time.Minute)
	f.svc.Touch(ctx, session.Id, f.clk.Now())

	f.clk.Advance(time.Minute)
	_, ok = f.svc.Validate(ctx, session.Id)
	assert.True(t, ok)
}

func TestSessionDiesAtTokenDeadline(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res := f.login(t)
	session, ok := f.svc.ValidateToken(ctx, res.Token)
	require.True(t, ok)

	// Even constant activity cannot carry a session past the token expiry.
	f.clk.Advance(28 * time.Minute)
	f.svc.Touch(ctx, session.Id, f.clk.Now())

	f.clk.Advance(3 * time.Minute) // T+31min
	_, ok = f.svc.Validate(ctx, session.Id)
	assert.False(t, ok)

	// Expiry clears every stored key.
	keys, err := f.store.Keys(ctx, "session:")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSweepFlagsExpiringSessions(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res := f.login(t)
	session, ok := f.svc.ValidateToken(ctx, res.Token)
	require.True(t, ok)

	// T+26min leaves 4 minutes, inside the 5 minute warning window.
	f.clk.Advance(26 * time.Minute)
	f.svc.sweep(ctx)

	assert.Equal(t, []string{session.Id}, f.notifier.expiring)

	restored, ok := f.svc.Validate(ctx, session.Id)
	require.True(t, ok)
	assert.True(t, restored.Expiring)

	// A second sweep must not re-announce.
	f.svc.sweep(ctx)
	assert.Len(t, f.notifier.expiring, 1)
}

func TestSweepExpiresAndNotifies(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res := f.login(t)
	session, ok := f.svc.ValidateToken(ctx, res.Token)
	require.True(t, ok)

	f.clk.Advance(31 * time.Minute)
	f.svc.sweep(ctx)

	assert.Equal(t, []string{session.Id}, f.notifier.expired)

	keys, err := f.store.Keys(ctx, "session:")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestExtendResetsWarning(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res := f.login(t)
	session, ok := f.svc.ValidateToken(ctx, res.Token)
	require.True(t, ok)

	f.clk.Advance(26 * time.Minute)
	f.svc.sweep(ctx)

	status, err := f.svc.Extend(ctx, session.Id)
	require.NoError(t, err)
	assert.True(t, status.IsAuthenticated)
	assert.False(t, status.SessionExpiring)

	restored, ok := f.svc.Validate(ctx, session.Id)
	require.True(t, ok)
	assert.False(t, restored.Expiring)
	assert.True(t, restored.LastActivityAt.Equal(f.clk.Now()))
}

func TestExtendPublishesManualActivity(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res := f.login(t)
	session, ok := f.svc.ValidateToken(ctx, res.Token)
	require.True(t, ok)

	assert.Empty(t, f.activity.published())

	_, err := f.svc.Extend(ctx, session.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{dto.ActivityKindExtend}, f.activity.published())
}

func TestMonitorSweepsOnClockTicks(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res := f.login(t)
	session, ok := f.svc.ValidateToken(ctx, res.Token)
	require.True(t, ok)

	f.svc.StartMonitor()
	defer f.svc.StopMonitor()

	// One mock tick past the warning boundary. The monitor goroutine picks
	// the tick up asynchronously, so poll for the notice.
	f.clk.Advance(26 * time.Minute)
	require.Eventually(t, func() bool {
		f.notifier.mu.Lock()
		defer f.notifier.mu.Unlock()
		return len(f.notifier.expiring) == 1 && f.notifier.expiring[0] == session.Id
	}, 2*time.Second, 10*time.Millisecond, "monitor tick must run a sweep")
}

func TestExtendFailsOnDeadSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res := f.login(t)
	session, ok := f.svc.ValidateToken(ctx, res.Token)
	require.True(t, ok)

	f.clk.Advance(31 * time.Minute)
	_, err := f.svc.Extend(ctx, session.Id)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestLogoutLeavesNoResidualKeys(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	// Two rapid logins then a logout. The first login's keys must be gone
	// already (replaced session), the second's gone after logout.
	f.login(t)
	res2 := f.login(t)

	session, ok := f.svc.ValidateToken(ctx, res2.Token)
	require.True(t, ok)

	require.NoError(t, f.svc.Logout(ctx, session.Id))

	keys, err := f.store.Keys(ctx, "session:")
	require.NoError(t, err)
	assert.Empty(t, keys, "residual session keys after logout: %v", keys)
}

func TestReloginInvalidatesOldToken(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res1 := f.login(t)
	f.login(t)

	_, ok := f.svc.ValidateToken(ctx, res1.Token)
	assert.False(t, ok, "token from a replaced login must be dead")
}

func TestCorruptSessionFailsClosed(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res := f.login(t)
	session, ok := f.svc.ValidateToken(ctx, res.Token)
	require.True(t, ok)

	// Corrupt the stored profile. Validation must fail without panicking
	// and must clear the remaining keys.
	key := "session:" + session.Id + ":profile"
	require.NoError(t, f.store.Put(ctx, key, "{not json", time.Hour))

	_, ok = f.svc.Validate(ctx, session.Id)
	assert.False(t, ok)

	keys, err := f.store.Keys(ctx, "session:")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, ok := f.svc.ValidateToken(ctx, "not.a.token")
	assert.False(t, ok)

	_, ok = f.svc.ValidateToken(ctx, "")
	assert.False(t, ok)
}
