package wizard_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"formdesk/internal/domain"
	"formdesk/internal/wizard"
	"formdesk/mocks"
)

func TestAutosaver_AppliesOperationsInOrder(t *testing.T) {
	repo := new(mocks.MockDraftRepo)
	var (
		mu  sync.Mutex
		ops []string
	)
	record := func(op string) func(mock.Arguments) {
		return func(mock.Arguments) {
			mu.Lock()
			ops = append(ops, op)
			mu.Unlock()
		}
	}
	repo.On("Save", mock.Anything, mock.MatchedBy(func(d *domain.Draft) bool { return d.Step == 0 })).Run(record("save-0")).Return(nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(d *domain.Draft) bool { return d.Step == 1 })).Run(record("save-1")).Return(nil)
	repo.On("Delete", mock.Anything, "motor-claim:c1").Run(record("delete")).Return(domain.ErrNotFound)

	a := wizard.NewAutosaver(repo, zap.NewNop(), 8)
	defer a.Close()

	a.Save(&domain.Draft{Key: "motor-claim:c1", Step: 0})
	a.Save(&domain.Draft{Key: "motor-claim:c1", Step: 1})
	a.Delete("motor-claim:c1")
	require.NoError(t, a.Flush(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"save-0", "save-1", "delete"}, ops)
}

func TestAutosaver_DropsWhenQueueIsFull(t *testing.T) {
	repo := new(mocks.MockDraftRepo)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	repo.On("Save", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	}).Return(nil)

	a := wizard.NewAutosaver(repo, zap.NewNop(), 1)
	defer a.Close()

	a.Save(&domain.Draft{Key: "k", Step: 0})
	<-started
	a.Save(&domain.Draft{Key: "k", Step: 1})
	a.Save(&domain.Draft{Key: "k", Step: 2})
	close(release)

	require.NoError(t, a.Flush(context.Background()))
	repo.AssertNumberOfCalls(t, "Save", 2)
}

func TestAutosaver_FailuresAreSwallowed(t *testing.T) {
	repo := new(mocks.MockDraftRepo)
	repo.On("Save", mock.Anything, mock.Anything).Return(assert.AnError)

	a := wizard.NewAutosaver(repo, zap.NewNop(), 4)
	a.Save(&domain.Draft{Key: "k"})
	require.NoError(t, a.Flush(context.Background()))
	a.Close()

	a.Save(&domain.Draft{Key: "k"})
	a.Close()
	repo.AssertNumberOfCalls(t, "Save", 1)
	assert.NoError(t, a.Flush(context.Background()))
}

func TestAutosaver_DeleteSurvivesFullQueue(t *testing.T) {
	repo := new(mocks.MockDraftRepo)
	var (
		mu  sync.Mutex
		ops []string
	)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	repo.On("Save", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		mu.Lock()
		ops = append(ops, "save")
		mu.Unlock()
	}).Return(nil)
	repo.On("Delete", mock.Anything, "k").Run(func(mock.Arguments) {
		mu.Lock()
		ops = append(ops, "delete")
		mu.Unlock()
	}).Return(nil)

	a := wizard.NewAutosaver(repo, zap.NewNop(), 1)
	defer a.Close()

	a.Save(&domain.Draft{Key: "k", Step: 0})
	<-started
	a.Save(&domain.Draft{Key: "k", Step: 1})
	a.Delete("k")
	close(release)

	require.NoError(t, a.Flush(context.Background()))
	repo.AssertNumberOfCalls(t, "Delete", 1)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, ops)
	assert.Equal(t, "delete", ops[len(ops)-1])
}

func TestAutosaver_CloseAppliesPendingDeletes(t *testing.T) {
	repo := new(mocks.MockDraftRepo)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	repo.On("Save", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	}).Return(nil)
	repo.On("Delete", mock.Anything, mock.Anything).Return(nil)

	a := wizard.NewAutosaver(repo, zap.NewNop(), 1)
	a.Save(&domain.Draft{Key: "a"})
	<-started
	a.Save(&domain.Draft{Key: "b"})
	a.Delete("a")
	a.Delete("c")
	close(release)
	a.Close()

	repo.AssertCalled(t, "Delete", mock.Anything, "a")
	repo.AssertCalled(t, "Delete", mock.Anything, "c")
}
