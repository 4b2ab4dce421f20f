package generators

import (
	"fmt"
	"sync"

	"github.com/reusee/quizrun/configs"
)

// GeneratorSpec names a backend configured under the "generators" key.
// Specs are consulted before the built-in names.
type GeneratorSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
	GeneratorArgs
}

type GetGeneratorSpecs func() ([]GeneratorSpec, error)

func (Module) GetGeneratorSpecs(
	loader configs.Loader,
) GetGeneratorSpecs {
	return sync.OnceValues(func() (ret []GeneratorSpec, err error) {
		seen := make(map[string]bool)
		for value, err := range loader.IterCueValues("generators") {
			if err != nil {
				return nil, err
			}
			var specs []GeneratorSpec
			if err := value.Decode(&specs); err != nil {
				return nil, err
			}
			for _, spec := range specs {
				// earlier files take precedence
				if seen[spec.Name] {
					continue
				}
				if spec.Name == "" || spec.Type == "" {
					return nil, fmt.Errorf("generator spec requires name and type: %+v", spec)
				}
				seen[spec.Name] = true
				ret = append(ret, spec)
			}
		}
		return
	})
}
