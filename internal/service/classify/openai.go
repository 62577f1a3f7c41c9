package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"trendintel/internal/domain/insight"
)

// OpenAIClassifier drives a chat-completion model to classify trend URLs
// and synthesize category narratives.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIClassifier builds a classifier against the given API key and
// model name.
func NewOpenAIClassifier(apiKey, model string) *OpenAIClassifier {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClassifier{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const analyzePromptTemplate = `Analyze this fashion trend item from %s.

URL: %s

Provide a JSON object with fields: category, subcategory, colors (list),
patterns (list), style_tags (list), fabrications (list), price_point
(budget/mid/luxury/designer), demographic
(junior_girls/young_women/contemporary/kids), engagement_estimate (int),
narrative. Return ONLY valid JSON, no additional text.`

// AnalyzeTrend classifies one URL into structured fashion attributes.
func (c *OpenAIClassifier) AnalyzeTrend(ctx context.Context, url, sourcePlatform string) (*Analysis, error) {
	prompt := fmt.Sprintf(analyzePromptTemplate, sourcePlatform, url)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analyze trend: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(stripFences(content)), &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w", err)
	}

	analysis.Normalize()
	return &analysis, nil
}

const seedPromptTemplate = `Generate 3 realistic trending fashion products for each of these
brands, aimed at the junior girls (15-28) market:

%s

Return a JSON array of objects with fields: source_id, product_url,
category, colors (list), patterns (list), style_tags (list), fabrications
(list), price_point, demographic, narrative, estimated_likes,
estimated_comments, estimated_shares, estimated_views.
Return ONLY valid JSON, no additional text.`

// GenerateSeeds asks the model for plausible trending products per brand.
func (c *OpenAIClassifier) GenerateSeeds(ctx context.Context, brands []Brand) ([]SeedProduct, error) {
	if len(brands) == 0 {
		return nil, nil
	}

	lines := make([]string, 0, len(brands))
	for _, b := range brands {
		lines = append(lines, fmt.Sprintf("- %s (%s), source_id=%s", b.Name, b.URL, b.SourceID))
	}
	prompt := fmt.Sprintf(seedPromptTemplate, strings.Join(lines, "\n"))

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate seeds: %w", err)
	}

	var seeds []SeedProduct
	if err := json.Unmarshal([]byte(stripFences(content)), &seeds); err != nil {
		return nil, fmt.Errorf("parse seed response: %w", err)
	}

	return seeds, nil
}

const insightPromptTemplate = `You are a fashion trend analyst. For each category aggregate below,
write a 2-3 sentence summary of what is trending and why it matters for
junior fashion buyers.

%s

Return a JSON array of objects with fields: category, summary,
key_characteristics (object). Return ONLY valid JSON, no additional text.`

// CategoryInsights turns typed category aggregates into narrative
// summaries.
func (c *OpenAIClassifier) CategoryInsights(ctx context.Context, aggregates []insight.CategoryAggregate) ([]insight.CategoryInsight, error) {
	if len(aggregates) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(aggregates)
	if err != nil {
		return nil, fmt.Errorf("marshal aggregates: %w", err)
	}

	content, err := c.complete(ctx, fmt.Sprintf(insightPromptTemplate, string(data)))
	if err != nil {
		return nil, fmt.Errorf("category insights: %w", err)
	}

	var insights []insight.CategoryInsight
	if err := json.Unmarshal([]byte(stripFences(content)), &insights); err != nil {
		return nil, fmt.Errorf("parse insight response: %w", err)
	}

	now := time.Now().UTC()
	for i := range insights {
		insights[i].GeneratedAt = now
	}
	return insights, nil
}

const recommendPromptTemplate = `You are a retail intelligence scout for a junior fashion buying team.
Suggest up to 5 new sources or influencers worth tracking.

Currently tracked sources:
%s

Recently liked: %s
Recently disliked: %s

Do NOT suggest any of these already-rejected URLs:
%s

Return a JSON array of objects with fields: type (source/influencer),
title, description, url, platform, reason, confidence_score (0-1).
Return ONLY valid JSON, no additional text.`

// Recommend asks the model for new sources to track, steering it with
// past feedback.
func (c *OpenAIClassifier) Recommend(ctx context.Context, rc RecommendContext) ([]Suggestion, error) {
	prompt := fmt.Sprintf(recommendPromptTemplate,
		joinOrNone(rc.ExistingSources),
		joinOrNone(rc.Liked),
		joinOrNone(rc.Disliked),
		joinOrNone(rc.RejectedURLs),
	)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(stripFences(content)), &suggestions); err != nil {
		return nil, fmt.Errorf("parse recommendation response: %w", err)
	}

	return suggestions, nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func (c *OpenAIClassifier) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	slog.Debug("classifier completion", "model", c.model, "tokens", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON
// in one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
