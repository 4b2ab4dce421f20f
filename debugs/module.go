package debugs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
