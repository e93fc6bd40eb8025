package chat

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"dive-roast/db"
	"dive-roast/dive"
	"dive-roast/rag"
	"dive-roast/session"
	"dive-roast/utils"
)

const defaultModel = "gemini-2.5-flash"

// Soft cap on tool rounds per turn; the model normally converges in 1-3.
const maxToolRounds = 8

type GeminiClient struct {
	client      *genai.Client
	model       string
	prompt      string
	temperature float32
	search      *rag.SearchClient
}

// chatTemperature resolves the sampling temperature for roast turns.
func chatTemperature() float32 {
	return float32(utils.GetEnvFloat("GEMINI_TEMPERATURE", 0.8))
}

// NewGeminiClient creates the roast agent. dbc supplies the stored system
// prompt when one exists and may be nil; search may be nil, in which case
// the DAN search tools report the service as unavailable.
func NewGeminiClient(ctx context.Context, dbc db.DBClient, search *rag.SearchClient) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &GeminiClient{
		client:      client,
		model:       utils.GetEnv("GEMINI_MODEL", defaultModel),
		prompt:      ResolveSystemPrompt(dbc),
		temperature: chatTemperature(),
		search:      search,
	}, nil
}

// SeedContext builds the history turns that tell the model a dive log is
// already loaded, including the per-dive digest it can reason over without
// tool calls.
func SeedContext(features []dive.DiveFeature) []session.Message {
	numbers := make([]string, len(features))
	for i, f := range features {
		numbers[i] = f.DiveNumber
	}
	contextMsg := fmt.Sprintf(
		"[System: The diver has uploaded a dive log containing %d dives (dive numbers: %s). "+
			"The data is loaded and available through your tools; do not ask for an upload.]\n\n%s",
		len(features), strings.Join(numbers, ", "), dive.Digest(features))

	return []session.Message{
		{Role: "user", Content: contextMsg},
		{Role: "model", Content: fmt.Sprintf("Got it, %d dives loaded. Ready when you are.", len(features))},
	}
}

func (g *GeminiClient) generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.prompt, genai.RoleModel),
		Temperature:       genai.Ptr(g.temperature),
		TopP:              genai.Ptr(float32(0.9)),
		Tools:             []*genai.Tool{{FunctionDeclarations: toolDeclarations()}},
	}
}

func historyContents(history []session.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		var role genai.Role = genai.RoleUser
		if msg.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

// ChatStream runs one turn of the conversation for sess: it resolves tool
// calls until the model is ready to answer, then streams the answer text
// through onChunk. Both turns are appended to the session history.
func (g *GeminiClient) ChatStream(ctx context.Context, store session.Store, sess *session.Session, message string, onChunk func(string) error) error {
	history, err := store.History(sess.ID)
	if err != nil {
		return fmt.Errorf("failed to load session history: %v", err)
	}
	contents := historyContents(history)
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))
	config := g.generationConfig()

	round := 0
	for ; round < maxToolRounds; round++ {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
		if err != nil {
			return fmt.Errorf("failed to generate content: %v", err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			break
		}

		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}
		for _, call := range calls {
			result := g.dispatchTool(ctx, call.Name, call.Args, sess.Samples)
			contents = append(contents, genai.NewContentFromFunctionResponse(
				call.Name, map[string]any{"result": result}, genai.RoleUser))
		}
	}
	if round == maxToolRounds {
		return fmt.Errorf("tool loop exceeded %d rounds", maxToolRounds)
	}

	stream := g.client.Models.GenerateContentStream(ctx, g.model, contents, config)

	var full strings.Builder
	for resp, err := range stream {
		if err != nil {
			return fmt.Errorf("stream error: %v", err)
		}

		text := strings.ReplaceAll(resp.Text(), "*", "")
		if text != "" {
			full.WriteString(text)
			if err := onChunk(text); err != nil {
				return fmt.Errorf("chunk callback error: %v", err)
			}
		}
	}

	answer := full.String()
	if answer == "" {
		answer = "I'm sorry, I couldn't generate a response. Please try rephrasing your question."
		if err := onChunk(answer); err != nil {
			return fmt.Errorf("chunk callback error: %v", err)
		}
	}
	return store.AppendHistory(sess.ID,
		session.Message{Role: "user", Content: message},
		session.Message{Role: "model", Content: answer},
	)
}

// generateText is the plain single-shot path used for dashboard summaries.
func (g *GeminiClient) generateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: genai.Ptr(float32(0.4))})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %v", err)
	}
	return resp.Text(), nil
}

func (g *GeminiClient) Close() error {
	// The genai client manages its resources automatically.
	return nil
}
