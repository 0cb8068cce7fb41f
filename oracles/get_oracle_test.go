package oracles

import (
	"testing"
)

func TestGetOracle(t *testing.T) {
	testScope(t, `
oracles: [
	{
		name: "local"
		type: "ollama"
		model: "qwen"
	},
	{
		name: "custom"
		type: "openai"
		model: "my-model"
		base_url: "http://127.0.0.1:9999/v1"
		api_key: "k"
		temperature: 0.2
	},
	{
		name: "broken"
		type: "nope"
	},
]
`).Call(func(
		get GetOracle,
		name DefaultOracleName,
	) {
		if name != "gpt-4o" {
			t.Fatalf("got %v", name)
		}

		oracle, err := get("gpt-4o")
		if err != nil {
			t.Fatal(err)
		}
		if args := oracle.(*OpenAI).Args(); args.BaseURL != openAIBaseURL || args.Model != "gpt-4o" {
			t.Fatalf("got %+v", args)
		}

		oracle, err = get("local")
		if err != nil {
			t.Fatal(err)
		}
		if args := oracle.(*OpenAI).Args(); args.BaseURL != ollamaBaseURL || !args.KeyOptional || args.Model != "qwen" {
			t.Fatalf("got %+v", args)
		}

		oracle, err = get("custom")
		if err != nil {
			t.Fatal(err)
		}
		args := oracle.(*OpenAI).Args()
		if args.BaseURL != "http://127.0.0.1:9999/v1" || args.APIKey != "k" {
			t.Fatalf("got %+v", args)
		}
		if args.Temperature == nil || *args.Temperature != 0.2 {
			t.Fatalf("got %v", args.Temperature)
		}

		oracle, err = get("ollama:llama3")
		if err != nil {
			t.Fatal(err)
		}
		if args := oracle.(*OpenAI).Args(); args.Model != "llama3" {
			t.Fatalf("got %+v", args)
		}

		oracle, err = get("gemini-flash")
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := oracle.(Gemini); !ok {
			t.Fatalf("got %T", oracle)
		}

		if _, err := get("broken"); err == nil {
			t.Fatal("expected error")
		}
		if _, err := get("no-such-oracle"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDefaultOracleFromConfig(t *testing.T) {
	testScope(t, `oracle: "gemini-pro"`).Call(func(
		get GetDefaultOracle,
	) {
		oracle, err := get()
		if err != nil {
			t.Fatal(err)
		}
		if args := oracle.(Gemini).Args(); args.Model != "gemini-pro-latest" {
			t.Fatalf("got %+v", args)
		}
	})
}
