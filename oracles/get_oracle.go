package oracles

import (
	"fmt"
	"os"
	"strings"

	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/vars"
)

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	ollamaBaseURL     = "http://127.0.0.1:11434/v1"
)

type GetOracle func(name string) (Oracle, error)

func (Module) GetOracle(
	newOpenAI NewOpenAI,
	newGemini NewGemini,
	getSpecs GetOracleSpecs,
	openAIKey OpenAIAPIKey,
	openRouterKey OpenRouterAPIKey,
) GetOracle {
	return func(name string) (Oracle, error) {

		// user-defined first
		specs, err := getSpecs()
		if err != nil {
			return nil, err
		}
		for _, spec := range specs {
			if spec.Name != name {
				continue
			}
			args := spec.OracleArgs
			switch strings.ToLower(spec.Type) {
			case "openai", "open-ai", "open_ai":
				args.BaseURL = vars.FirstNonZero(args.BaseURL, openAIBaseURL)
				args.APIKey = vars.FirstNonZero(args.APIKey, string(openAIKey))
				return newOpenAI(args), nil
			case "open-router", "open_router", "openrouter":
				args.BaseURL = vars.FirstNonZero(args.BaseURL, openRouterBaseURL)
				args.APIKey = vars.FirstNonZero(args.APIKey, string(openRouterKey))
				return newOpenAI(args), nil
			case "ollama":
				args.BaseURL = vars.FirstNonZero(args.BaseURL, ollamaBaseURL)
				args.KeyOptional = true
				return newOpenAI(args), nil
			case "gemini":
				return newGemini(args), nil
			default:
				return nil, fmt.Errorf("unknown oracle type: %q", spec.Type)
			}
		}

		provider, modelName, ok := strings.Cut(name, ":")
		if ok {
			switch provider {
			case "ollama":
				return newOpenAI(OracleArgs{
					BaseURL:     ollamaBaseURL,
					Model:       modelName,
					KeyOptional: true,
				}), nil
			case "openrouter":
				return newOpenAI(OracleArgs{
					BaseURL: openRouterBaseURL,
					Model:   modelName,
					APIKey:  string(openRouterKey),
				}), nil
			}
		}

		// built-ins
		switch name {

		case "gpt-4o", "gpt-4o-mini":
			return newOpenAI(OracleArgs{
				BaseURL: openAIBaseURL,
				Model:   name,
				APIKey:  string(openAIKey),
			}), nil

		case "flash", "gemini-flash":
			return newGemini(OracleArgs{
				Model:       "gemini-flash-latest",
				Temperature: vars.PtrTo(float32(0.1)),
			}), nil

		case "pro", "gemini-pro":
			return newGemini(OracleArgs{
				Model:       "gemini-pro-latest",
				Temperature: vars.PtrTo(float32(0.1)),
			}), nil

		}

		return nil, fmt.Errorf("invalid oracle: %s", name)
	}
}

type DefaultOracleName string

func (Module) DefaultOracleName(
	loader configs.Loader,
	logger logs.Logger,
) (ret DefaultOracleName) {
	defer func() {
		logger.Info("default oracle", "name", ret)
	}()
	return vars.FirstNonZero(
		configs.First[DefaultOracleName](loader, "oracle"),
		DefaultOracleName(os.Getenv("VAGUE_ORACLE")),
		"gpt-4o",
	)
}

type GetDefaultOracle func() (Oracle, error)

func (Module) GetDefaultOracle(
	name DefaultOracleName,
	get GetOracle,
) GetDefaultOracle {
	return func() (Oracle, error) {
		return get(string(name))
	}
}
