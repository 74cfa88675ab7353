package testrunner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/samber/lo"
)

// Runner describes an external BDD runner that accepts a feature file path.
type Runner struct {
	// Name is the executable looked up on PATH.
	Name string `json:"name"`
	// Args are placed before the feature file, e.g. "run" for godog.
	Args        []string `json:"args,omitempty"`
	InstallHint string   `json:"install_hint,omitempty"`
}

func (r Runner) String() string {
	return strings.Join(append([]string{r.Name}, r.Args...), " ")
}

// Hint returns the install instructions shown when the runner is missing.
func (r Runner) Hint() string {
	if r.InstallHint != "" {
		return r.InstallHint
	}
	return fmt.Sprintf("Make sure '%s' is installed and on your PATH", r.Name)
}

const (
	Behave     = "behave"
	Godog      = "godog"
	CucumberJS = "cucumber-js"
)

// Registry manages the runners known by name.
type Registry struct {
	runners map[string]Runner
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{runners: make(map[string]Runner)}
}

// DefaultRegistry creates a registry with behave, godog and cucumber-js pre-registered.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(Runner{Name: Behave, InstallHint: "pip install behave"})
	reg.Register(Runner{Name: Godog, Args: []string{"run"}, InstallHint: "go install github.com/cucumber/godog/cmd/godog@latest"})
	reg.Register(Runner{Name: CucumberJS, InstallHint: "npm install --save-dev @cucumber/cucumber"})
	return reg
}

// Register adds a runner, replacing any runner with the same name.
func (r *Registry) Register(runner Runner) {
	if runner.Name == "" {
		return
	}
	r.runners[runner.Name] = runner
}

// Get retrieves a runner by name.
func (r *Registry) Get(name string) (Runner, bool) {
	runner, ok := r.runners[name]
	return runner, ok
}

// Resolve returns the registered runner for name, or an ad-hoc runner
// invoking name directly with a generic install hint.
func (r *Registry) Resolve(name string, args ...string) Runner {
	runner, ok := r.Get(name)
	if !ok {
		runner = Runner{Name: name}
	}
	if len(args) > 0 {
		runner.Args = args
	}
	return runner
}

// Names lists the registered runners, sorted.
func (r *Registry) Names() []string {
	names := lo.Keys(r.runners)
	sort.Strings(names)
	return names
}

func (r Registry) Pretty() api.Text {
	return clicky.Text("").Append("runners: ", "text-muted").Append(clicky.CompactList(r.Names()))
}
