package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/meraroom/meraroom-server/internal/dto"
	"github.com/meraroom/meraroom-server/internal/service"
)

func (s *Server) registerAssistantRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "describeRoom",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions/{id}/assistant/describe",
		Summary:       "Draft description",
		Description:   "Starts drafting a listing description for the post-room form. The text arrives as an assistant.description_ready event.",
		Tags:          []string{"Assistant"},
		DefaultStatus: http.StatusAccepted,
		Middlewares:   s.rateLimited(s.assistantRateLimiter),
	}, s.handleDescribe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "askAboutRoom",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions/{id}/assistant/ask",
		Summary:       "Ask about room",
		Description:   "Asks a question about the open room. The answer arrives as an assistant.answer_ready event.",
		Tags:          []string{"Assistant"},
		DefaultStatus: http.StatusAccepted,
		Middlewares:   s.rateLimited(s.assistantRateLimiter),
	}, s.handleAsk)
}

// === DTOs ===

// DescribeInput wraps the describe request.
type DescribeInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body service.DescribeRequest
}

// AskInput wraps the ask request.
type AskInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body service.AskRequest
}

// TaskResponse acknowledges an accepted assistant task.
type TaskResponse struct {
	TaskID  string      `json:"task_id" doc:"Matches the task_id of the ready event"`
	Session dto.Session `json:"session" doc:"Session view with the task pending"`
}

// TaskOutput wraps the task response for Huma.
type TaskOutput struct {
	Body TaskResponse
}

func taskOutput(task *service.TaskView, err error) (*TaskOutput, error) {
	if err != nil {
		return nil, err
	}
	return &TaskOutput{Body: TaskResponse{
		TaskID:  task.TaskID,
		Session: sessionBody(task.Session),
	}}, nil
}

// === Handlers ===

func (s *Server) handleDescribe(ctx context.Context, input *DescribeInput) (*TaskOutput, error) {
	return taskOutput(s.services.Session.Describe(ctx, input.ID, input.Body))
}

func (s *Server) handleAsk(ctx context.Context, input *AskInput) (*TaskOutput, error) {
	return taskOutput(s.services.Session.Ask(ctx, input.ID, input.Body))
}
