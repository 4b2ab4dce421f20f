package gateways

import (
	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/tools"
)

type Module struct {
	dscope.Module
	Configs    configs.Module
	Generators generators.Module
	Logs       logs.Module
	Tools      tools.Module
}
