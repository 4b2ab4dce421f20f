package servers

import (
	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/quizconfigs"
	"github.com/reusee/quizrun/runs"
)

type Module struct {
	dscope.Module
	Configs     configs.Module
	Logs        logs.Module
	QuizConfigs quizconfigs.Module
	Runs        runs.Module
}
