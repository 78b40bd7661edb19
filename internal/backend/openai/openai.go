// Package openai implements the embedding/generation backend on top of
// any OpenAI-compatible API, including local model servers that speak
// the same protocol.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"docsbot/internal/domain"
)

// Config configures the backend client.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	EmbedModel string
	ChatModel  string
}

// Backend talks to an OpenAI-compatible provider for both embeddings
// and streamed chat completions.
type Backend struct {
	client     *openai.Client
	embedModel openai.EmbeddingModel
	chatModel  string
}

// New creates the backend. A missing API key is a construction error;
// the caller treats that as startup-fatal.
func New(cfg Config) (*Backend, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Backend{
		client:     openai.NewClientWithConfig(clientCfg),
		embedModel: openai.EmbeddingModel(cfg.EmbedModel),
		chatModel:  cfg.ChatModel,
	}, nil
}

// EmbedBatch returns one vector per input text, in input order. The
// provider reports each vector's input index, so results are placed by
// index rather than response position.
func (b *Backend) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := b.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: b.embedModel,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("no embedding returned for input %d", i)
		}
	}
	return vectors, nil
}

// EmbedOne embeds a single text.
func (b *Backend) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := b.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// AnswerStream asks the chat model for a streamed completion grounded
// in contents and forwards tokens as they arrive.
func (b *Backend) AnswerStream(ctx context.Context, prompt, contents string) (domain.Stream, error) {
	stream, err := b.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       b.chatModel,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: ComposePrompt(prompt, contents)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create chat stream: %w", err)
	}
	return &answerStream{stream: stream}, nil
}

// ComposePrompt builds the single instruction sent to the chat model:
// the user prompt followed by the retrieved document verbatim.
func ComposePrompt(prompt, contents string) string {
	return prompt + "\n Context: " + contents + "\n Be concise"
}

type answerStream struct {
	stream *openai.ChatCompletionStream
}

func (s *answerStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("receive completion delta: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *answerStream) Close() error {
	return s.stream.Close()
}
