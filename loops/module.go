package loops

import (
	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/chains"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/gateways"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/tools"
)

type Module struct {
	dscope.Module
	Chains   chains.Module
	Configs  configs.Module
	Gateways gateways.Module
	Logs     logs.Module
	Tools    tools.Module
}
