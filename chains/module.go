package chains

import (
	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}
