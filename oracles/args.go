package oracles

type OracleArgs struct {
	Model       string   `json:"model,omitempty"`
	BaseURL     string   `json:"base_url,omitempty"`
	APIKey      string   `json:"api_key,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	// local endpoints accept requests without a key
	KeyOptional bool `json:"-"`
}
