package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/quizconfigs"
	"github.com/reusee/quizrun/runs"
	"github.com/reusee/quizrun/sandboxes"
	"github.com/reusee/quizrun/servers"
)

type Module struct {
	dscope.Module
	Generators  generators.Module
	QuizConfigs quizconfigs.Module
	Runs        runs.Module
	Sandboxes   sandboxes.Module
	Servers     servers.Module
}
