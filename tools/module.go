package tools

import (
	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/nets"
	"github.com/reusee/quizrun/quizconfigs"
)

type Module struct {
	dscope.Module
	Configs     configs.Module
	Logs        logs.Module
	Nets        nets.Module
	QuizConfigs quizconfigs.Module
}
