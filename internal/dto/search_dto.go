package dto

import (
	"task-manager-be/pkg/textmatch"
)

type SearchTasksRequest struct {
	Query      string   `json:"query"`
	Fields     []string `json:"fields"`
	MinScore   float64  `json:"min_score" validate:"gte=0,lte=100"`
	Highlights bool     `json:"highlights"`
}

type MultiMatchRequest struct {
	Query   string             `json:"query" validate:"required"`
	Weights map[string]float64 `json:"weights"`
}

type FuzzySearchRequest struct {
	Query       string `json:"query" validate:"required"`
	MaxDistance int    `json:"max_distance" validate:"gte=0,lte=5"`
}

type SuggestRequest struct {
	Query string `json:"query" validate:"required"`
	Max   int    `json:"max" validate:"gte=0,lte=50"`
}

// ScoredTaskResponse pairs a task with its relevance data. Highlights is
// only populated when the caller asked for markup.
type ScoredTaskResponse struct {
	Task       *TaskResponse                  `json:"task"`
	Score      float64                        `json:"score"`
	Matched    bool                           `json:"matched"`
	Highlights map[string]textmatch.Highlight `json:"highlights,omitempty"`
}

type SuggestResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}
