package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reusee/quizrun/generators"
)

var ErrUnknownTool = errors.New("unknown tool")

// Func performs one capability. A returned error is rendered into the tool
// result by the dispatcher, so implementations report expected failures as
// results and reserve errors for the unexpected.
type Func = func(ctx context.Context, args map[string]any) (map[string]any, error)

type Capability struct {
	Decl    generators.FuncDecl
	Timeout time.Duration
	Func    Func
}

// Registry maps capability names to capabilities. It is immutable after
// construction.
type Registry struct {
	names        []string
	capabilities map[string]Capability
}

func NewRegistry(capabilities ...Capability) (*Registry, error) {
	ret := &Registry{
		capabilities: make(map[string]Capability),
	}
	for _, capability := range capabilities {
		name := capability.Decl.Name
		if name == "" {
			return nil, fmt.Errorf("capability without name")
		}
		if _, ok := ret.capabilities[name]; ok {
			return nil, fmt.Errorf("duplicated capability: %s", name)
		}
		if capability.Func == nil {
			return nil, fmt.Errorf("capability without func: %s", name)
		}
		ret.names = append(ret.names, name)
		ret.capabilities[name] = capability
	}
	return ret, nil
}

func (r *Registry) Get(name string) (Capability, error) {
	capability, ok := r.capabilities[name]
	if !ok {
		return Capability{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return capability, nil
}

// Names returns capability names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Decls() (ret []generators.FuncDecl) {
	for _, name := range r.names {
		ret = append(ret, r.capabilities[name].Decl)
	}
	return
}
