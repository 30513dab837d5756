// Package llm proxies excuse generation to the Anthropic API.
//
// The model is instructed to end every response with a "BELIEVABILITY: [0-100]"
// marker, which is parsed off the body before the excuse is returned. API
// failures are propagated unchanged; retry policy belongs to the caller.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const maxTokens = 1024

// Default ratings when the model omits the believability marker.
const (
	defaultRating         = 50
	defaultUltimateRating = 0
)

// Result is a parsed generation response.
type Result struct {
	Excuse              string
	BelievabilityRating int
}

// GenerateRequest describes a fresh excuse generation.
type GenerateRequest struct {
	Situation string
	Tone      string
	Length    string
	Seed      string
}

// Direction of an excuse adjustment.
const (
	DirectionBetter = "better"
	DirectionWorse  = "worse"
)

// AdjustRequest describes a refinement of an existing excuse.
type AdjustRequest struct {
	OriginalExcuse string
	Situation      string
	Tone           string
	Length         string
	Direction      string
	Seed           string
}

// Client is the Anthropic-backed excuse generator.
type Client struct {
	anthropic anthropic.Client
	model     string
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a generation client.
func New(apiKey, model string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		anthropic: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		timeout:   timeout,
		logger:    logger,
	}
}

// Generate produces a fresh excuse for the given situation, tone, and length.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (Result, error) {
	seed := orRandomSeed(req.Seed)

	system := `You are an excuse generator. Generate creative, unique excuses that are substantially different each time.

CRITICAL: Each excuse must be completely original in wording, theme, and approach. Avoid repeating similar phrases, scenarios, or structures. Vary the subject matter, characters, locations, and circumstances in each generation.

Always include a believability rating (0-100) at the end in the format "BELIEVABILITY: [number]".`

	user := fmt.Sprintf(`Generate a creative, unique excuse for the following situation.

Situation: %s
Tone: %s
Length: %s
Seed: %s

Generate a completely original excuse that hasn't been used before. Make it substantially different from typical excuses - vary the subject matter, characters, locations, and circumstances. The seed value should inspire unique variations.

End with "BELIEVABILITY: [0-100]" where you rate how believable the excuse is.`, req.Situation, req.Tone, req.Length, seed)

	return c.complete(ctx, system, user, defaultRating)
}

// Adjust refines an existing excuse to be more or less believable.
func (c *Client) Adjust(ctx context.Context, req AdjustRequest) (Result, error) {
	seed := orRandomSeed(req.Seed)

	directionText := "more believable and realistic"
	if req.Direction == DirectionWorse {
		directionText = "more absurd and over-the-top"
	}

	system := fmt.Sprintf(`You are an expert at refining excuses. Take an existing excuse and make it %s.

CRITICAL: Create a unique variation that is substantially different in wording and approach from the original. Avoid copying phrases or patterns - reimagine the excuse creatively.

Include a believability rating (0-100) at the end of your response in the format "BELIEVABILITY: [number]".`, directionText)

	user := fmt.Sprintf(`Original excuse: %q

Situation: %s
Tone: %s
Length: %s
Direction: Make it %s
Seed: %s

Refine this excuse while maintaining the specified tone and length. Create a unique variation that uses different wording, scenarios, and details from the original. The seed value should inspire creative variations.

End with "BELIEVABILITY: [0-100]".`, req.OriginalExcuse, req.Situation, req.Tone, req.Length, directionText, seed)

	return c.complete(ctx, system, user, defaultRating)
}

// Ultimate produces the Easter-egg excuse. The believability default is 0
// here: if the model forgets the marker, the result is maximally unbelievable.
func (c *Client) Ultimate(ctx context.Context) (Result, error) {
	system := `You are a comedic genius. Generate the most absurdly hilarious, over-the-top excuse that could never be believed. Make it creative and wildly entertaining. Include a believability rating (0-100) at the end in the format "BELIEVABILITY: [number]".`

	user := `Generate the ultimate, most ridiculous excuse imaginable. This should be a comedic masterpiece that is hilariously unbelievable. End with "BELIEVABILITY: [0-100]".`

	return c.complete(ctx, system, user, defaultUltimateRating)
}

// complete runs one message turn and parses the believability marker.
func (c *Client) complete(ctx context.Context, system, user string, fallbackRating int) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.anthropic.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("llm api call: %w", err)
	}

	if len(msg.Content) == 0 {
		return Result{}, fmt.Errorf("empty response from model %s", c.model)
	}

	body, rating := ParseBelievability(msg.Content[0].Text, fallbackRating)

	c.logger.Debug("generation complete",
		"model", c.model,
		"believability", rating,
		"chars", len(body),
	)

	return Result{Excuse: body, BelievabilityRating: rating}, nil
}

// orRandomSeed returns the given seed, or a fresh "<unix-ms>-<base36>" one.
func orRandomSeed(seed string) string {
	if seed != "" {
		return seed
	}
	suffix := strconv.FormatUint(rand.Uint64()%2176782336, 36) // 36^6
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}
