// File: internal/assistant/service.go

// Package assistant drafts listing descriptions with the Gemini API so
// sellers do not have to start from a blank text box.
package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"marketplace_backend/internal/common"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Service defines the interface for the description assistant.
type Service interface {
	GenerateDescription(ctx context.Context, req DescribeRequest) (string, error)
}

// DescribeRequest is what the seller has filled in so far.
type DescribeRequest struct {
	Title     string            `json:"title" binding:"required,max=255"`
	Category  string            `json:"category" binding:"required,max=100"`
	Condition string            `json:"condition" binding:"omitempty,max=20"`
	Fields    map[string]string `json:"fields"`
}

type service struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewService creates the assistant backed by the Gemini API.
func NewService(apiKey, model string, logger *zap.Logger) (Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &service{client: client, model: model, logger: logger}, nil
}

func (s *service) GenerateDescription(ctx context.Context, req DescribeRequest) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(buildPrompt(req), genai.RoleUser),
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		s.logger.Error("Description generation failed", zap.Error(err), zap.String("model", s.model))
		return "", common.ErrServiceUnavailable.WithDetails("The description assistant is temporarily unavailable.")
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", common.ErrServiceUnavailable.WithDetails("The description assistant returned no text.")
	}
	return text, nil
}

func buildPrompt(req DescribeRequest) string {
	var b strings.Builder
	b.WriteString("Write a short, friendly marketplace listing description (max 120 words) for the following item. ")
	b.WriteString("Plain text only, no headings or bullet points.\n")
	fmt.Fprintf(&b, "Title: %s\nCategory: %s\n", req.Title, req.Category)
	if req.Condition != "" {
		fmt.Fprintf(&b, "Condition: %s\n", req.Condition)
	}
	if len(req.Fields) > 0 {
		keys := make([]string, 0, len(req.Fields))
		for key := range req.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		b.WriteString("Details:\n")
		for _, key := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", key, req.Fields[key])
		}
	}
	return b.String()
}
