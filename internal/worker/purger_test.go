package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/firetrack/backend/internal/cache"
	"github.com/firetrack/backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeLocker struct {
	held     bool
	err      error
	unlocked int
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	if l.held {
		return "", cache.ErrLockHeld
	}
	l.held = true
	return "token", nil
}

func (l *fakeLocker) Unlock(_ context.Context, _ string, token string) error {
	if token == "token" {
		l.held = false
		l.unlocked++
	}
	return nil
}

type mockActivationCodes struct {
	mock.Mock
}

func (m *mockActivationCodes) IssueOrRefresh(ctx context.Context, user *domain.User) (*domain.ActivationCode, error) {
	args := m.Called(ctx, user)
	code, _ := args.Get(0).(*domain.ActivationCode)
	return code, args.Error(1)
}

func (m *mockActivationCodes) ValidateAndActivate(ctx context.Context, user *domain.User, code int) (*domain.User, error) {
	args := m.Called(ctx, user, code)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockActivationCodes) Delete(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockActivationCodes) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockActivationCodes) RemainingAttempts(code *domain.ActivationCode) int {
	return m.Called(code).Int(0)
}

func TestPurger_PurgeExpiredActivationCodes(t *testing.T) {
	locker := &fakeLocker{}
	codes := &mockActivationCodes{}
	codes.On("PurgeExpired", mock.Anything).Return(int64(4), nil).Once()

	p := newPurger(locker, codes, time.Minute)

	n, err := p.PurgeExpiredActivationCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, 1, locker.unlocked)
	assert.False(t, locker.held)
	codes.AssertExpectations(t)
}

func TestPurger_LockHeldElsewhere(t *testing.T) {
	locker := &fakeLocker{held: true}
	codes := &mockActivationCodes{}

	p := newPurger(locker, codes, time.Minute)

	n, err := p.PurgeExpiredActivationCodes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	codes.AssertNotCalled(t, "PurgeExpired", mock.Anything)
}

func TestPurger_LockError(t *testing.T) {
	lockErr := errors.New("redis unavailable")
	codes := &mockActivationCodes{}

	p := newPurger(&fakeLocker{err: lockErr}, codes, time.Minute)

	_, err := p.PurgeExpiredActivationCodes(context.Background())
	assert.ErrorIs(t, err, lockErr)
	codes.AssertNotCalled(t, "PurgeExpired", mock.Anything)
}

func TestPurger_PurgeError(t *testing.T) {
	purgeErr := errors.New("db gone")
	locker := &fakeLocker{}
	codes := &mockActivationCodes{}
	codes.On("PurgeExpired", mock.Anything).Return(int64(0), purgeErr)

	p := newPurger(locker, codes, time.Minute)

	_, err := p.PurgeExpiredActivationCodes(context.Background())
	assert.ErrorIs(t, err, purgeErr)
	assert.Equal(t, 1, locker.unlocked)
}
