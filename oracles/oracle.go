package oracles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfigMissing   = errors.New("oracle credential missing")
	ErrMalformedOutput = errors.New("malformed oracle output")
)

// Oracle writes source code for natural-language instructions.
type Oracle interface {
	Generate(ctx context.Context, req Request) (*Candidate, error)
}

type Request struct {
	Instructions string
	// sorted names of the caller's mapping
	Locals []string
	// sorted names visible in the shared environment
	Globals []string
	Dialect string
}

type Candidate struct {
	FunctionCode string `json:"function_code"`
	FunctionName string `json:"function_name"`
}

type OracleFunc func(ctx context.Context, req Request) (*Candidate, error)

var _ Oracle = OracleFunc(nil)

func (o OracleFunc) Generate(ctx context.Context, req Request) (*Candidate, error) {
	return o(ctx, req)
}

// ParseCandidate decodes a JSON object with function_code and function_name, optionally inside a code fence.
func ParseCandidate(text string) (*Candidate, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			// language tag
			text = text[i+1:]
		}
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	code, _ := fields["function_code"].(string)
	name, _ := fields["function_name"].(string)
	if code == "" {
		return nil, fmt.Errorf("%w: missing function_code", ErrMalformedOutput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: missing function_name", ErrMalformedOutput)
	}
	return &Candidate{
		FunctionCode: code,
		FunctionName: name,
	}, nil
}
