package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-be/internal/dto"
	"task-manager-be/internal/entity"
	"task-manager-be/internal/repository/memory"
)

func seedTasks(t *testing.T, repo *memory.TaskRepository) {
	t.Helper()
	base := time.Now()
	tasks := []*entity.Task{
		{Id: uuid.New(), Title: "Team meeting", Description: "Weekly sync with the team", Priority: entity.TaskPriorityHigh, CreatedAt: base},
		{Id: uuid.New(), Title: "Shopping", Description: "Buy groceries before the meeting", Priority: entity.TaskPriorityLow, CreatedAt: base.Add(time.Second)},
		{Id: uuid.New(), Title: "Receive the package", Description: "Front desk pickup", Priority: entity.TaskPriorityMedium, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, task := range tasks {
		require.NoError(t, repo.Create(context.Background(), task))
	}
}

func newSearchFixture(t *testing.T) (*sessionFixture, ISearchService, string) {
	t.Helper()

	f := newSessionFixture(t)
	repo := memory.NewTaskRepository()
	seedTasks(t, repo)

	svc := NewSearchService(repo, f.svc)

	res := f.login(t)
	session, ok := f.svc.ValidateToken(context.Background(), res.Token)
	require.True(t, ok)

	return f, svc, session.Id
}

func TestSearchRanksTitleHitsAboveDescriptionHits(t *testing.T) {
	_, svc, sessionID := newSearchFixture(t)

	results, err := svc.Search(context.Background(), sessionID, &dto.SearchTasksRequest{Query: "meet"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Team meeting", results[0].Task.Title)
	assert.Equal(t, "Shopping", results[1].Task.Title)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchRejectsDeadSession(t *testing.T) {
	f, svc, sessionID := newSearchFixture(t)

	f.clk.Advance(31 * time.Minute)

	_, err := svc.Search(context.Background(), sessionID, &dto.SearchTasksRequest{Query: "meet"})
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSearchWithHighlights(t *testing.T) {
	_, svc, sessionID := newSearchFixture(t)

	results, err := svc.Search(context.Background(), sessionID, &dto.SearchTasksRequest{
		Query:      "meeting",
		Highlights: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	title, ok := results[0].Highlights["title"]
	require.True(t, ok)
	assert.Equal(t, "Team <mark>meeting</mark>", title.Highlighted)
}

func TestMultiMatchWeighsPriorityField(t *testing.T) {
	_, svc, sessionID := newSearchFixture(t)

	results, err := svc.MultiMatch(context.Background(), sessionID, &dto.MultiMatchRequest{Query: "high"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "Team meeting", results[0].Task.Title)
	// Exact priority match scores 100, weighted by the 1.5 default.
	assert.InDelta(t, 150.0, results[0].Score, 0.001)
}

func TestFuzzySearchToleratesTypos(t *testing.T) {
	_, svc, sessionID := newSearchFixture(t)

	results, err := svc.FuzzySearch(context.Background(), sessionID, &dto.FuzzySearchRequest{Query: "recieve"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Receive the package", results[0].Title)
}

func TestSuggestCorrectsMisspelledWord(t *testing.T) {
	_, svc, sessionID := newSearchFixture(t)

	res, err := svc.Suggest(context.Background(), sessionID, &dto.SuggestRequest{Query: "meting"})
	require.NoError(t, err)
	assert.Contains(t, res.Suggestions, "meeting")
}

func TestSuggestEmptyForUnrelatedWord(t *testing.T) {
	_, svc, sessionID := newSearchFixture(t)

	res, err := svc.Suggest(context.Background(), sessionID, &dto.SuggestRequest{Query: "xylophone"})
	require.NoError(t, err)
	assert.Empty(t, res.Suggestions)
}
