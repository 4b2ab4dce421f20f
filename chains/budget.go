package chains

import (
	"fmt"
	"time"

	"github.com/reusee/quizrun/configs"
)

// MaxDuration is the nominal time budget of one run. It is advisory: the
// remaining time is reported to the reasoning service, nothing stops on it.
type MaxDuration time.Duration

func (Module) MaxDuration(
	loader configs.Loader,
) MaxDuration {
	if value := configs.First[string](loader, "max_run_duration"); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			panic(fmt.Errorf("max_run_duration: %w", err))
		}
		return MaxDuration(d)
	}
	return MaxDuration(180 * time.Second)
}

type Now func() time.Time

func (Module) Now() Now {
	return time.Now
}
