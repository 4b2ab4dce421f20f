package configs

import "github.com/reusee/dscope"

// Module carries no providers; the Loader is supplied by the application
// config package, which knows the file names and schema.
type Module struct {
	dscope.Module
}
