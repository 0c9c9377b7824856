package scanner

import (
	"context"
	"fmt"

	"RegScanner/internal/domain"
)

// Request carries all parameters required to execute one strategy against
// one source.
type Request struct {
	Source domain.SourceConfig
}

// Scanner captures a single fetch strategy (RSS, paginated HTML, headless
// browser). Strategies report applicability so the orchestrator can run
// every strategy a source configures.
type Scanner interface {
	Name() string
	Applicable(src domain.SourceConfig) bool
	Scan(ctx context.Context, req Request) ([]domain.RegUpdate, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
	order    []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	if _, exists := r.scanners[scanner.Name()]; !exists {
		r.order = append(r.order, scanner.Name())
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}

// All returns the registered scanners in registration order.
func (r *Registry) All() []Scanner {
	out := make([]Scanner, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.scanners[name])
	}
	return out
}
