package oracles

import (
	"context"
	"fmt"
	"sync"

	"github.com/reusee/dscope"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/nets"
	"github.com/reusee/vague/prompts"
	"github.com/reusee/vague/vars"
	"google.golang.org/genai"
)

type Gemini struct {
	args      OracleArgs
	GetClient dscope.Inject[GetGeminiClient]
	Logger    dscope.Inject[logs.Logger]
}

var _ Oracle = Gemini{}

func (g Gemini) Args() OracleArgs {
	return g.args
}

func (g Gemini) Generate(ctx context.Context, request Request) (*Candidate, error) {
	client, err := g.GetClient()(ctx, g.args.APIKey, g.args.BaseURL)
	if err != nil {
		return nil, err
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

	g.Logger().InfoContext(ctx, "generating",
		"model", g.args.Model,
	)

	resp, err := client.Models.GenerateContent(
		ctx,
		g.args.Model,
		[]*genai.Content{
			genai.NewContentFromText(userPrompt, genai.RoleUser),
		},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompts.System, ""),
			ResponseMIMEType:  "application/json",
			Temperature:       g.args.Temperature,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", g.args.Model, err)
	}

	return ParseCandidate(resp.Text())
}

type GetGeminiClient = func(ctx context.Context, key string, baseURL string) (*genai.Client, error)

func (Module) GetGeminiClient(
	client nets.HTTPClient,
	apiKey GoogleAPIKey,
) GetGeminiClient {
	var clients sync.Map // key and base url -> *genai.Client
	return func(ctx context.Context, key string, baseURL string) (*genai.Client, error) {
		key = vars.FirstNonZero(
			key,
			string(apiKey),
		)
		if key == "" {
			return nil, fmt.Errorf("%w: set google_api_key or GOOGLE_API_KEY", ErrConfigMissing)
		}

		cacheKey := key + "\x00" + baseURL
		if v, ok := clients.Load(cacheKey); ok {
			return v.(*genai.Client), nil
		}

		c, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     key,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: client,
			HTTPOptions: genai.HTTPOptions{
				BaseURL: baseURL,
			},
		})
		if err != nil {
			return nil, err
		}

		v, _ := clients.LoadOrStore(cacheKey, c)
		return v.(*genai.Client), nil
	}
}

type NewGemini func(args OracleArgs) Gemini

func (Module) NewGemini(
	inject dscope.InjectStruct,
) NewGemini {
	return func(args OracleArgs) Gemini {
		ret := Gemini{
			args: args,
		}
		inject(&ret)
		return ret
	}
}
