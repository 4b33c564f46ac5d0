package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"tubebrief/errors"
)

const defaultTimeout = 60 * time.Second

// summaryPrompt embeds the advisory word budget and the full transcript.
// The same inputs always produce the same prompt shape.
const summaryPrompt = `You are a YouTube video summarizer. Take the transcript text and provide a detailed summary in bullet points within %d words. Focus on key concepts and structure the output clearly.
Text:
%s

Summary:
`

type service struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewService creates a Gemini-backed summarizer. The client is built once at
// startup; a bad credential surfaces here, not per-request.
func NewService(ctx context.Context, cfg Config, log zerolog.Logger) (Service, error) {
	const op = "summarizer.NewService"

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Configuration(op, err, "Failed to create generation client")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &service{
		client:  client,
		model:   cfg.Model,
		timeout: timeout,
		logger:  log.With().Str("component", "summarizer").Logger(),
	}, nil
}

// Summarize submits one generation request and returns the first candidate's
// text. Zero candidates (safety filtering, empty responses) and transport
// errors are reported, never retried; oversized input is passed through
// unchunked, the caller owns the soft-size warning.
func (s *service) Summarize(ctx context.Context, text string, targetWords int) (*Result, error) {
	const op = "summarizer.Summarize"

	prompt := fmt.Sprintf(summaryPrompt, targetWords, text)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.TransportFailure(op, ctx.Err(), "Summarization timed out")
		}
		return nil, errors.TransportFailure(op, err, "Failed to contact generation endpoint")
	}

	if result == nil || len(result.Candidates) == 0 {
		return nil, errors.UpstreamUnavailable(op, nil,
			"No summary produced: "+feedbackDetail(result))
	}

	candidate := result.Candidates[0]
	var out strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				out.WriteString(part.Text)
			}
		}
	}

	summary := strings.TrimSpace(out.String())
	if summary == "" {
		return nil, errors.UpstreamUnavailable(op, nil,
			"No summary produced: candidate had no text ("+finishReason(candidate)+")")
	}

	s.logger.Debug().
		Int("target_words", targetWords).
		Int("summary_chars", len(summary)).
		Str("finish_reason", finishReason(candidate)).
		Msg("Summary generated")

	return &Result{
		Text:         summary,
		Model:        s.model,
		FinishReason: finishReason(candidate),
	}, nil
}

// feedbackDetail extracts whatever the endpoint said about why nothing came
// back, for the user-facing message.
func feedbackDetail(result *genai.GenerateContentResponse) string {
	if result == nil {
		return "empty response"
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "prompt blocked (" + string(result.PromptFeedback.BlockReason) + ")"
	}
	return "the endpoint returned zero candidates"
}

func finishReason(c *genai.Candidate) string {
	if c == nil || c.FinishReason == "" {
		return "unspecified"
	}
	return string(c.FinishReason)
}
