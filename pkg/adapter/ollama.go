package adapter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trek/pkg/utils/logging"
)

// LLM is the interface for the text generation backend
type LLM interface {
	// Generate sends a prompt and returns the fully aggregated response text
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	defaultOllamaAddr = "http://127.0.0.1:11434"
	defaultModel      = "llama3.2:1b"
	defaultMaxTokens  = 2000

	// The backend streams for the whole generation, so the client timeout
	// covers the full response, not just the first byte.
	generateTimeout = 300 * time.Second

	// maxChunkBytes caps how much of one stream line is buffered. Real
	// chunks are short text fragments; anything larger is discarded.
	maxChunkBytes = 1024 * 1024
)

// OllamaClient implements LLM against an Ollama /api/generate endpoint
type OllamaClient struct {
	addr      string
	model     string
	maxTokens int
	client    *http.Client
}

type OllamaOption func(*OllamaClient)

func WithAddr(addr string) OllamaOption {
	return func(c *OllamaClient) {
		c.addr = strings.TrimRight(addr, "/")
	}
}

func WithModel(model string) OllamaOption {
	return func(c *OllamaClient) {
		c.model = model
	}
}

func WithMaxTokens(n int) OllamaOption {
	return func(c *OllamaClient) {
		c.maxTokens = n
	}
}

func WithHTTPClient(client *http.Client) OllamaOption {
	return func(c *OllamaClient) {
		c.client = client
	}
}

// NewOllama creates a new Ollama client
func NewOllama(opts ...OllamaOption) *OllamaClient {
	c := &OllamaClient{
		addr:      defaultOllamaAddr,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
		client:    &http.Client{Timeout: generateTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type generateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// generateChunk is one decoded unit of the streamed response. Only the text
// fragment matters; the stream ends when the connection closes, not on Done.
type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate issues a generation request and reduces the newline-delimited
// JSON stream to a single string. Lines that fail to decode are skipped:
// streaming transports commonly emit keep-alives and trailing newlines.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:     c.model,
		Prompt:    prompt,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal generate request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addr+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create generate request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call generation backend", goerr.V("addr", c.addr))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", goerr.New("generation backend returned non-success status",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(msg)))
	}

	var output strings.Builder
	reader := bufio.NewReaderSize(resp.Body, 64*1024)

	var (
		line     []byte
		skipping bool
	)
	for {
		segment, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", goerr.Wrap(err, "failed to read generation stream")
		}

		// A line over the cap cannot be a real chunk; drop it like any
		// other undecodable line instead of failing the generation.
		if skipping || len(line)+len(segment) > maxChunkBytes {
			line = line[:0]
			skipping = isPrefix
			if !isPrefix {
				logging.From(ctx).Debug("skipping oversized chunk")
			}
			continue
		}

		line = append(line, segment...)
		if isPrefix {
			continue
		}

		trimmed := bytes.TrimSpace(line)
		line = line[:0]
		if len(trimmed) == 0 {
			continue
		}

		var chunk generateChunk
		if err := json.Unmarshal(trimmed, &chunk); err != nil {
			logging.From(ctx).Debug("skipping undecodable chunk", "line", string(trimmed))
			continue
		}

		output.WriteString(chunk.Response)
	}

	return strings.TrimSpace(output.String()), nil
}
