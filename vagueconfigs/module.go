package vagueconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/vague/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
