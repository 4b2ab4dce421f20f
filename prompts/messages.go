package prompts

import (
	"fmt"
	"time"
)

func Start(url string) string {
	return "Solve the quiz at this URL: " + url
}

// Context describes the live state of a run. It is appended before every
// reasoning step.
func Context(
	email string,
	secret string,
	url string,
	taskCount int,
	elapsed time.Duration,
	remaining time.Duration,
) string {
	return fmt.Sprintf(`Current context:
- Email: %s
- Secret: %s
- Current URL: %s
- Quiz number: %d
- Time elapsed: %.1fs
- Time remaining: %.1fs

Start by rendering the current URL to see the quiz question.`,
		email,
		secret,
		url,
		taskCount,
		elapsed.Seconds(),
		remaining.Seconds(),
	)
}
