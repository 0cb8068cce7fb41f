package oracles

import (
	"github.com/reusee/dscope"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/nets"
)

type Module struct {
	dscope.Module
	Nets nets.Module
	Logs logs.Module
}
