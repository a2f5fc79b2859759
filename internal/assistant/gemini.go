package assistant

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/amzmarine/crm/internal/config"
	"github.com/amzmarine/crm/internal/crm/model"
)

// ErrNoImage is returned when the model answers without image data.
var ErrNoImage = errors.New("no image generated")

// contentGenerator is the subset of genai.Models the assistant calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements Assistant on the Gemini API.
type Gemini struct {
	models contentGenerator
	cfg    config.AssistantConfig
}

// NewGemini creates a client for the Gemini API.
func NewGemini(ctx context.Context, cfg config.AssistantConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{models: client.Models, cfg: cfg}, nil
}

func newGeminiWithGenerator(models contentGenerator, cfg config.AssistantConfig) *Gemini {
	return &Gemini{models: models, cfg: cfg}
}

// NewFromConfig returns a Gemini assistant when an API key is configured and
// Unavailable otherwise.
func NewFromConfig(ctx context.Context, cfg config.AssistantConfig) (Assistant, error) {
	if cfg.APIKey == "" {
		slog.Info("assistant disabled", "reason", "GEMINI_API_KEY not set")
		return Unavailable{}, nil
	}
	g, err := NewGemini(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("assistant enabled", "chatModel", cfg.ChatModel, "parseModel", cfg.ParseModel)
	return g, nil
}

func (g *Gemini) generate(ctx context.Context, op, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := g.models.GenerateContent(ctx, modelName, contents, cfg)
	if err != nil {
		slog.WarnContext(ctx, "assistant call failed", "op", op, "model", modelName, "error", err)
		return nil, fmt.Errorf("assistant %s failed: %w", op, err)
	}
	return resp, nil
}

func (g *Gemini) Chat(ctx context.Context, message string, history []Message, shipments []model.Shipment) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, genai.Role(role)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	resp, err := g.generate(ctx, "chat", g.cfg.ChatModel, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatInstruction(g.cfg.SystemPrompt, shipments), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.6),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *Gemini) Summarize(ctx context.Context, leads []model.Lead, shipments []model.Shipment) (string, error) {
	state, err := stateJSON(leads, shipments)
	if err != nil {
		return "", err
	}
	resp, err := g.generate(ctx, "summarize", g.cfg.ChatModel,
		[]*genai.Content{genai.NewContentFromText("JSON_STATE: "+state, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(briefInstruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.3),
		})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *Gemini) ParseFreeText(ctx context.Context, text string, salesReps []string) (*ParsedShipment, error) {
	resp, err := g.generate(ctx, "parse", g.cfg.ParseModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(parseInstruction(salesReps), genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    parseSchema(),
		})
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		raw = "{}"
	}
	var parsed ParsedShipment
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parse result: %w", err)
	}
	return &parsed, nil
}

func (g *Gemini) Query(ctx context.Context, question string, leads []model.Lead, shipments []model.Shipment) (string, error) {
	state, err := stateJSON(leads, shipments)
	if err != nil {
		return "", err
	}
	resp, err := g.generate(ctx, "query", g.cfg.ChatModel,
		[]*genai.Content{genai.NewContentFromText(question, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(queryInstruction+state, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.1),
		})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// GenerateImage renders a square image. 4K requests are served at 1K.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string, size ImageSize) (string, error) {
	if size == "" || size == ImageSize4K {
		size = ImageSize1K
	}
	resp, err := g.generate(ctx, "image", g.cfg.ImageModel,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{
				AspectRatio: "1:1",
				ImageSize:   string(size),
			},
		})
	if err != nil {
		return "", err
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
		}
	}
	return "", ErrNoImage
}

func parseSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	num := &genai.Schema{Type: genai.TypeNumber}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"customerName":   str,
			"trackingNumber": str,
			"blNumber":       str,
			"shippingLine": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"value":                {Type: genai.TypeString, Nullable: genai.Ptr(true)},
					"confidence":           num,
					"originalTextDetected": str,
				},
				Required: []string{"value", "confidence", "originalTextDetected"},
			},
			"origin":           str,
			"destination":      str,
			"cargoDescription": str,
			"salesRep":         str,
			"inlandFreight":    num,
			"gensetCost":       num,
			"officialReceipts": num,
			"overnightStay":    num,
			"otherExpenses":    num,
			"currency":         str,
			"eta":              str,
			"weightKg":         num,
		},
	}
}
