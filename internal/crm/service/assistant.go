package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/amzmarine/crm/internal/assistant"
	"github.com/amzmarine/crm/internal/crm/model"
)

// The assistant calls below read a snapshot under the read lock and release
// it before the network round trip.

// Chat answers a chat message with the current shipment list as context.
func (s *CRMService) Chat(ctx context.Context, message string, history []assistant.Message) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: message is required", model.ErrValidation)
	}
	return s.assistant.Chat(ctx, message, history, s.Shipments())
}

// Brief returns the operational summary of the whole CRM.
func (s *CRMService) Brief(ctx context.Context) (string, error) {
	return s.assistant.Summarize(ctx, s.Leads(), s.Shipments())
}

// Query answers a free-form question about the CRM state.
func (s *CRMService) Query(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is required", model.ErrValidation)
	}
	return s.assistant.Query(ctx, question, s.Leads(), s.Shipments())
}

// GenerateImage renders prompt as an image data URI.
func (s *CRMService) GenerateImage(ctx context.Context, prompt string, size assistant.ImageSize) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt is required", model.ErrValidation)
	}
	switch size {
	case "", assistant.ImageSize1K, assistant.ImageSize2K, assistant.ImageSize4K:
	default:
		return "", fmt.Errorf("%w: unsupported image size %q", model.ErrValidation, size)
	}
	return s.assistant.GenerateImage(ctx, prompt, size)
}
