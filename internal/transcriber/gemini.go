package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/logger"
)

const defaultGeminiPrompt = `Transcribe the speech in this audio recording verbatim, in the language it is spoken.
Return only the transcript text: no timestamps, no speaker labels, no commentary.
If there is no speech, return an empty response.`

const fileActivePoll = 2 * time.Second

type gemini struct {
	cfg        config.GeminiConfig
	logger     logger.Logger
	clients    []*genai.Client
	currentKey int
}

// loadGemini creates one client per API key. Keys rotate on quota errors.
func loadGemini(ctx context.Context, cfg config.GeminiConfig, log logger.Logger) (Transcriber, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("gemini: no API keys configured")
	}

	g := &gemini{cfg: cfg, logger: log}
	for i, key := range cfg.APIKeys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client %d: %w", i+1, err)
		}
		g.clients = append(g.clients, client)
	}

	log.Info(ctx, "Loaded Gemini model '%s' with %d API key(s)", cfg.Model, len(g.clients))
	return g, nil
}

func (g *gemini) Model() string { return g.cfg.Model }

func (g *gemini) Transcribe(ctx context.Context, audioPath string) (string, error) {
	prompt := g.cfg.Prompt
	if prompt == "" {
		prompt = defaultGeminiPrompt
	}

	var lastErr error
	for range g.clients {
		client := g.clients[g.currentKey]

		text, err := g.transcribeWith(ctx, client, audioPath, prompt)
		if err == nil {
			g.logger.Info(ctx, "Transcribed audio file %s", audioPath)
			return text, nil
		}
		if !isQuotaError(err) {
			return "", err
		}

		g.logger.Warn(ctx, "Key %d rate limited, rotating...", g.currentKey+1)
		g.rotateKey()
		lastErr = err
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *gemini) transcribeWith(ctx context.Context, client *genai.Client, audioPath, prompt string) (string, error) {
	file, err := client.Files.UploadFromPath(ctx, audioPath, &genai.UploadFileConfig{MIMEType: "audio/wav"})
	if err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	defer func() {
		if _, err := client.Files.Delete(context.WithoutCancel(ctx), file.Name, nil); err != nil {
			g.logger.Debug(ctx, "Failed to delete uploaded audio %s: %v", file.Name, err)
		}
	}()

	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(fileActivePoll):
		}
		if file, err = client.Files.Get(ctx, file.Name, nil); err != nil {
			return "", fmt.Errorf("poll uploaded audio: %w", err)
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromURI(file.URI, file.MIMEType),
		}, genai.RoleUser),
	}

	result, err := client.Models.GenerateContent(ctx, g.cfg.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}

func (g *gemini) rotateKey() {
	g.currentKey = (g.currentKey + 1) % len(g.clients)
}

func isQuotaError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
