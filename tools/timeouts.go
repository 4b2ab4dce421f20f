package tools

import (
	"fmt"
	"maps"
	"time"

	"github.com/reusee/quizrun/configs"
)

const (
	RenderPageName        = "render_page"
	FetchFileName         = "fetch_file"
	ExecuteCodeName       = "execute_code"
	SubmitAnswerName      = "submit_answer"
	InstallDependencyName = "install_dependency"
)

// Timeouts bound each capability invocation.
type Timeouts map[string]time.Duration

var defaultTimeouts = Timeouts{
	RenderPageName:        30 * time.Second,
	FetchFileName:         60 * time.Second,
	ExecuteCodeName:       60 * time.Second,
	SubmitAnswerName:      30 * time.Second,
	InstallDependencyName: 2 * time.Minute,
}

func (Module) Timeouts(
	loader configs.Loader,
) Timeouts {
	ret := maps.Clone(defaultTimeouts)
	for name, value := range configs.First[map[string]string](loader, "tool_timeouts") {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			panic(fmt.Errorf("tool_timeouts.%s: %w", name, err))
		}
		ret[name] = timeout
	}
	return ret
}

func (t Timeouts) Of(name string) time.Duration {
	if timeout, ok := t[name]; ok {
		return timeout
	}
	return time.Minute
}
