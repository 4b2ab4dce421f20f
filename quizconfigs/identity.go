package quizconfigs

import (
	"os"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/vars"
)

// Secret is the shared secret submissions must present.
type Secret string

func (Module) Secret(
	loader configs.Loader,
) Secret {
	return vars.FirstNonZero(
		configs.First[Secret](loader, "secret"),
		Secret(os.Getenv("SECRET")),
	)
}

// Email is the expected principal; a mismatch is only logged.
type Email string

func (Module) Email(
	loader configs.Loader,
) Email {
	return vars.FirstNonZero(
		configs.First[Email](loader, "email"),
		Email(os.Getenv("EMAIL")),
	)
}
