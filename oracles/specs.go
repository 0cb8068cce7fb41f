package oracles

import (
	"sync"

	"github.com/reusee/vague/configs"
)

type OracleSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
	OracleArgs
}

type GetOracleSpecs func() ([]OracleSpec, error)

func (Module) GetOracleSpecs(
	loader configs.Loader,
) GetOracleSpecs {
	return sync.OnceValues(func() (ret []OracleSpec, err error) {
		for value, err := range loader.IterCueValues("oracles") {
			if err != nil {
				return nil, err
			}
			var specs []OracleSpec
			if err := value.Decode(&specs); err != nil {
				return nil, err
			}
			ret = append(ret, specs...)
		}
		return
	})
}
