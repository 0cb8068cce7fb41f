package oracles

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/reusee/dscope"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/nets"
	"github.com/reusee/vague/prompts"
	"github.com/reusee/vague/vars"
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	args   OracleArgs
	client nets.HTTPClient

	Logger         dscope.Inject[logs.Logger]
	ReadCredential dscope.Inject[ReadCredential]
}

var _ Oracle = new(OpenAI)

func (o *OpenAI) Args() OracleArgs {
	return o.args
}

func (o *OpenAI) Generate(ctx context.Context, request Request) (*Candidate, error) {
	apiKey := o.args.APIKey
	if apiKey == "" && !o.args.KeyOptional {
		var err error
		apiKey, err = o.ReadCredential()()
		if err != nil {
			return nil, err
		}
	}

	userPrompt, err := prompts.Generation(
		request.Dialect,
		request.Instructions,
		request.Locals,
		request.Globals,
	)
	if err != nil {
		return nil, err
	}

	req := ChatCompletionRequest{
		Model: o.args.Model,
		Messages: []ChatCompletionMessage{
			{
				Role:    "system",
				Content: prompts.System,
			},
			{
				Role:    "user",
				Content: userPrompt,
			},
		},
		Stream: true,
		ResponseFormat: &ResponseFormat{
			Type: "json_object",
		},
		Temperature: vars.DerefOrZero(o.args.Temperature),
	}

	o.Logger().InfoContext(ctx, "generating",
		"model", o.args.Model,
	)

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", strings.TrimSuffix(o.args.BaseURL, "/")+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, OpenAIError{
			Err:   err,
			Model: o.args.Model,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == nil {
			return nil, OpenAIError{
				Err:        fmt.Errorf("bad status: %d, body: %s", resp.StatusCode, string(body)),
				Model:      o.args.Model,
				StatusCode: resp.StatusCode,
			}
		}
		errResp.Error.HTTPStatusCode = resp.StatusCode
		return nil, OpenAIError{
			Err:        errResp.Error,
			Model:      o.args.Model,
			StatusCode: resp.StatusCode,
		}
	}

	text := new(strings.Builder)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "data: [DONE]") {
			break
		}

		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := line[6:]

		var streamResp ChatCompletionStreamResponse
		if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
			return nil, fmt.Errorf("error unmarshalling stream response: %w", err)
		}
		if len(streamResp.Choices) == 0 {
			continue
		}
		text.WriteString(streamResp.Choices[0].Delta.Content)
		if reason := streamResp.Choices[0].FinishReason; reason != "" && reason != "stop" {
			return nil, OpenAIError{
				Err:   fmt.Errorf("finish reason: %s", reason),
				Model: o.args.Model,
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading stream: %w", err)
	}

	return ParseCandidate(text.String())
}

type NewOpenAI func(args OracleArgs) *OpenAI

func (Module) NewOpenAI(
	inject dscope.InjectStruct,
	client nets.HTTPClient,
) NewOpenAI {
	return func(args OracleArgs) *OpenAI {
		ret := &OpenAI{
			args:   args,
			client: client,
		}
		inject(&ret)
		return ret
	}
}

type ChatCompletionRequest struct {
	Model          string                  `json:"model"`
	Messages       []ChatCompletionMessage `json:"messages"`
	Stream         bool                    `json:"stream"`
	Temperature    float32                 `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat         `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionStreamResponse struct {
	Choices []ChatCompletionStreamChoice `json:"choices"`
}

type ChatCompletionStreamChoice struct {
	Delta        ChatCompletionStreamChoiceDelta `json:"delta"`
	FinishReason string                          `json:"finish_reason"`
}

type ChatCompletionStreamChoiceDelta struct {
	Content string `json:"content,omitempty"`
	Role    string `json:"role,omitempty"`
}

type ErrorResponse struct {
	Error *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code           any     `json:"code,omitempty"`
	Message        string  `json:"message,omitempty"`
	Param          *string `json:"param,omitempty"`
	Type           string  `json:"type,omitempty"`
	HTTPStatusCode int     `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}
