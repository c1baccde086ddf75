package service

import (
	"context"
	"strings"
	"unicode"

	"task-manager-be/internal/dto"
	"task-manager-be/internal/entity"
	"task-manager-be/internal/repository/contract"
	"task-manager-be/pkg/textmatch"
)

type ISearchService interface {
	Search(ctx context.Context, sessionID string, req *dto.SearchTasksRequest) ([]*dto.ScoredTaskResponse, error)
	MultiMatch(ctx context.Context, sessionID string, req *dto.MultiMatchRequest) ([]*dto.ScoredTaskResponse, error)
	FuzzySearch(ctx context.Context, sessionID string, req *dto.FuzzySearchRequest) ([]*dto.TaskResponse, error)
	Suggest(ctx context.Context, sessionID string, req *dto.SuggestRequest) (*dto.SuggestResponse, error)
}

type searchService struct {
	taskRepo contract.TaskRepository
	sessions ISessionService
}

func NewSearchService(taskRepo contract.TaskRepository, sessions ISessionService) ISearchService {
	return &searchService{
		taskRepo: taskRepo,
		sessions: sessions,
	}
}

// Search runs ranked matching over the task list. The session gate is
// re-checked here, at invocation time, so a query debounced past expiry is
// rejected even though it was typed while the session was live.
func (s *searchService) Search(ctx context.Context, sessionID string, req *dto.SearchTasksRequest) ([]*dto.ScoredTaskResponse, error) {
	tasks, err := s.authorizedTasks(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	opts := textmatch.DefaultOptions()
	if len(req.Fields) > 0 {
		opts.Fields = req.Fields
	}
	opts.MinScore = req.MinScore
	opts.IncludeHighlights = req.Highlights

	records, byID := recordIndex(tasks)
	results := textmatch.Search(records, req.Query, opts)

	return scoredResponses(results, byID), nil
}

func (s *searchService) MultiMatch(ctx context.Context, sessionID string, req *dto.MultiMatchRequest) ([]*dto.ScoredTaskResponse, error) {
	tasks, err := s.authorizedTasks(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	weights := req.Weights
	if len(weights) == 0 {
		weights = textmatch.DefaultFieldWeights
	}

	records, byID := recordIndex(tasks)
	results := textmatch.MultiMatch(records, req.Query, weights)

	return scoredResponses(results, byID), nil
}

// FuzzySearch returns tasks whose title or description tolerates the query
// within the edit-distance bound. Unranked; this is a predicate filter, not
// a scored search.
func (s *searchService) FuzzySearch(ctx context.Context, sessionID string, req *dto.FuzzySearchRequest) ([]*dto.TaskResponse, error) {
	tasks, err := s.authorizedTasks(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	maxDistance := req.MaxDistance
	if maxDistance <= 0 {
		maxDistance = textmatch.DefaultMaxDistance
	}

	var out []*dto.TaskResponse
	for _, task := range tasks {
		if textmatch.FuzzyMatch(task.Title, req.Query, maxDistance) ||
			textmatch.FuzzyMatch(task.Description, req.Query, maxDistance) {
			out = append(out, dto.NewTaskResponse(task))
		}
	}
	return out, nil
}

// Suggest offers corrections for a probably-misspelled query term, drawn
// from the words currently present in the task list.
func (s *searchService) Suggest(ctx context.Context, sessionID string, req *dto.SuggestRequest) (*dto.SuggestResponse, error) {
	tasks, err := s.authorizedTasks(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	max := req.Max
	if max <= 0 {
		max = textmatch.DefaultMaxSuggestions
	}

	suggestions := textmatch.Suggest(req.Query, dictionaryOf(tasks), max)
	return &dto.SuggestResponse{
		Query:       req.Query,
		Suggestions: suggestions,
	}, nil
}

func (s *searchService) authorizedTasks(ctx context.Context, sessionID string) ([]*entity.Task, error) {
	if _, ok := s.sessions.Validate(ctx, sessionID); !ok {
		return nil, ErrSessionInvalid
	}
	return s.taskRepo.FindAll(ctx)
}

func recordIndex(tasks []*entity.Task) ([]textmatch.Record, map[string]*entity.Task) {
	records := make([]textmatch.Record, 0, len(tasks))
	byID := make(map[string]*entity.Task, len(tasks))
	for _, task := range tasks {
		records = append(records, task.SearchRecord())
		byID[task.Id.String()] = task
	}
	return records, byID
}

func scoredResponses(results []textmatch.Result, byID map[string]*entity.Task) []*dto.ScoredTaskResponse {
	out := make([]*dto.ScoredTaskResponse, 0, len(results))
	for _, res := range results {
		task, ok := byID[res.Record["id"]]
		if !ok {
			continue
		}
		out = append(out, &dto.ScoredTaskResponse{
			Task:       dto.NewTaskResponse(task),
			Score:      res.Score,
			Matched:    res.Matched,
			Highlights: res.Highlights,
		})
	}
	return out
}

// dictionaryOf collects the distinct words across task titles, descriptions
// and priorities. It feeds the suggestion engine, so typo corrections always
// point at words a search could actually hit.
func dictionaryOf(tasks []*entity.Task) []string {
	seen := make(map[string]struct{})
	var words []string

	add := func(text string) {
		for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			if len(word) < 2 {
				continue
			}
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			words = append(words, word)
		}
	}

	for _, task := range tasks {
		add(task.Title)
		add(task.Description)
		add(string(task.Priority))
	}
	return words
}
