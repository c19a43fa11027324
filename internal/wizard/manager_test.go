package wizard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"formdesk/internal/domain"
	"formdesk/internal/form/catalog"
	"formdesk/internal/wizard"
	"formdesk/mocks"
)

func newManager(saver *wizard.Autosaver) *wizard.Manager {
	return wizard.NewManager(catalog.MustDefault(), &fakeUploader{}, &recordingSubmitter{}, saver,
		wizard.ManagerConfig{SessionTTL: time.Hour}, zap.NewNop())
}

func TestManager_CreateAndGet(t *testing.T) {
	m := newManager(nil)
	ctx := context.Background()

	s, err := m.Create(ctx, "motor-claim", "", false)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ClientID)
	assert.Equal(t, "motor-claim", s.Definition().Type)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Create(ctx, "pet-claim", "", false)
	assert.ErrorIs(t, err, domain.ErrUnknownFormType)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, m.Delete(s.ID))
	assert.ErrorIs(t, m.Delete(s.ID), domain.ErrSessionNotFound)
	assert.Zero(t, m.Len())
}

func TestManager_EvictExpired(t *testing.T) {
	m := newManager(nil)
	ctx := context.Background()

	idle, err := m.Create(ctx, "fire-claim", "a", false)
	require.NoError(t, err)
	active, err := m.Create(ctx, "fire-claim", "b", false)
	require.NoError(t, err)

	now := time.Now()
	idle.Touch(now.Add(-2 * time.Hour))
	active.Touch(now)

	assert.Equal(t, 1, m.EvictExpired(now))
	assert.Equal(t, 1, m.Len())
	_, err = m.Get(active.ID)
	assert.NoError(t, err)
}

func TestManager_RestoresDraft(t *testing.T) {
	repo := new(mocks.MockDraftRepo)
	repo.On("Get", mock.Anything, "individual-kyc:client-9").Return(&domain.Draft{
		Key:    "individual-kyc:client-9",
		Step:   1,
		Values: []byte(`{"firstName":"Ada"}`),
	}, nil)
	repo.On("Get", mock.Anything, "individual-kyc:client-new").Return(nil, domain.ErrNotFound)
	saver := wizard.NewAutosaver(repo, zap.NewNop(), 8)
	defer saver.Close()

	m := newManager(saver)
	ctx := context.Background()

	s, err := m.Create(ctx, "individual-kyc", "client-9", true)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Step())
	assert.Equal(t, "Ada", s.View().Values["firstName"])

	fresh, err := m.Create(ctx, "individual-kyc", "client-new", true)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Step())
}
