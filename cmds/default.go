package cmds

var defaultExecutor = NewExecutor()

// Define registers a command on the process-wide executor. Packages call it
// from package-level var initializers, so it must not depend on main.
func Define(name string, command *Command) {
	defaultExecutor.Define(name, command)
}

func Execute(args []string) error {
	return defaultExecutor.Execute(args)
}

func MustExecute(args []string) {
	if err := defaultExecutor.Execute(args); err != nil {
		panic(err)
	}
}
