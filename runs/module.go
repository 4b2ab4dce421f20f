package runs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/chains"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/debugs"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/loops"
	"github.com/reusee/quizrun/storages"
)

type Module struct {
	dscope.Module
	Chains   chains.Module
	Configs  configs.Module
	Debugs   debugs.Module
	Logs     logs.Module
	Loops    loops.Module
	Storages storages.Module
}
