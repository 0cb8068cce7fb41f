package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/vague/pipelines"
	"github.com/reusee/vague/vagueconfigs"
)

type Module struct {
	dscope.Module
	Pipelines pipelines.Module
	Configs   vagueconfigs.Module
}
