package tools

import (
	"github.com/reusee/quizrun/logs"
)

func (Module) Registry(
	render RenderPage,
	fetch FetchFile,
	execute ExecuteCode,
	submit SubmitAnswer,
	install InstallDependency,
	timeouts Timeouts,
	logger logs.Logger,
) *Registry {
	registry, err := NewRegistry(
		renderPageCapability(render, timeouts),
		fetchFileCapability(fetch, timeouts),
		executeCodeCapability(execute, timeouts),
		submitAnswerCapability(submit, timeouts),
		installDependencyCapability(install, timeouts),
	)
	if err != nil {
		panic(err)
	}
	logger.Debug("tool registry", "names", registry.Names())
	return registry
}
