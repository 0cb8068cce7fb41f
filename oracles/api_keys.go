package oracles

import (
	"os"

	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/vars"
)

type (
	OpenAIAPIKey     string
	GoogleAPIKey     string
	OpenRouterAPIKey string
)

func (Module) OpenAIAPIKey(
	loader configs.Loader,
) OpenAIAPIKey {
	return vars.FirstNonZero(
		configs.First[OpenAIAPIKey](loader, "openai_api_key"),
		OpenAIAPIKey(os.Getenv("OPENAI_API_KEY")),
	)
}

func (Module) GoogleAPIKey(
	loader configs.Loader,
) GoogleAPIKey {
	return vars.FirstNonZero(
		configs.First[GoogleAPIKey](loader, "google_api_key"),
		GoogleAPIKey(os.Getenv("GOOGLE_API_KEY")),
		GoogleAPIKey(os.Getenv("GEMINI_API_KEY")),
	)
}

func (Module) OpenRouterAPIKey() OpenRouterAPIKey {
	return vars.FirstNonZero(
		OpenRouterAPIKey(os.Getenv("OPEN_ROUTER_API_KEY")),
		OpenRouterAPIKey(os.Getenv("OPENROUTER_API_KEY")),
	)
}
