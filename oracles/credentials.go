package oracles

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/modes"
	"github.com/reusee/vague/vars"
)

const placeholderAPIKey = "your-api-key"

type CredentialFile string

func (Module) CredentialFile(
	loader configs.Loader,
	workDir modes.WorkDir,
) CredentialFile {
	path := vars.FirstNonZero(
		configs.First[string](loader, "credential_file"),
		"openai.json",
	)
	if !filepath.IsAbs(path) {
		path = filepath.Join(string(workDir), path)
	}
	return CredentialFile(path)
}

type credential struct {
	APIKey string `json:"api_key"`
}

// ReadCredential returns the key in the credential file.
// A missing file is created with a placeholder key, and both that and an untouched placeholder report ErrConfigMissing.
type ReadCredential func() (string, error)

func (Module) ReadCredential(
	path CredentialFile,
	logger logs.Logger,
) ReadCredential {
	var mu sync.Mutex
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()

		content, err := os.ReadFile(string(path))
		if errors.Is(err, os.ErrNotExist) {
			content, err := json.MarshalIndent(credential{
				APIKey: placeholderAPIKey,
			}, "", "  ")
			if err != nil {
				return "", err
			}
			if err := os.WriteFile(string(path), content, 0600); err != nil {
				return "", err
			}
			logger.Warn("credential file created, fill in the api key",
				"path", path,
			)
			return "", fmt.Errorf("%w: edit %s", ErrConfigMissing, path)
		} else if err != nil {
			return "", err
		}

		var cred credential
		if err := json.Unmarshal(content, &cred); err != nil {
			return "", fmt.Errorf("decode %s: %w", path, err)
		}
		if cred.APIKey == "" || cred.APIKey == placeholderAPIKey {
			return "", fmt.Errorf("%w: no api key in %s", ErrConfigMissing, path)
		}
		return cred.APIKey, nil
	}
}
