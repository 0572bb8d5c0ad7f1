package digest

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer condenses long abstracts for display in the digest. Display
// only: scoring runs on the original text and never sees this output.
type Summarizer interface {
	Condense(ctx context.Context, title, abstract string) (string, error)
}

// OpenAISummarizer implements Summarizer using the Chat Completions API.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

type SummarizerConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

// NewOpenAISummarizer returns nil when no API key is configured; digests
// then carry truncated abstracts instead.
func NewOpenAISummarizer(cfg SummarizerConfig) *OpenAISummarizer {
	if cfg.APIKey == "" {
		return nil
	}
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAISummarizer{client: c, model: model}
}

func (o *OpenAISummarizer) Condense(ctx context.Context, title, abstract string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	abstract = strings.TrimSpace(abstract)
	if len([]rune(abstract)) > 2000 {
		abstract = string([]rune(abstract)[:2000])
	}

	sys := "Condense the academic abstract into two plain sentences for a reading digest: what the study examines and what it finds. Keep the author's terminology. No hype, no markdown."
	user := "Title: " + title + "\nAbstract: " + abstract

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sys},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
