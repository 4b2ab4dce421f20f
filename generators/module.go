package generators

import (
	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/nets"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Nets    nets.Module
	Logs    logs.Module
}
