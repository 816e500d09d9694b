package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/wizcli/wiz/internal/wiz"
)

const resolveShortHelp = `Resolve a list of package requests into an ordered package list`
const resolveLongHelp = `
Resolve builds a registry from one or more -path search roots, then resolves
the given package requests (e.g. "foo>=1.0.0", "bar[extra]") into an ordered
list of packages satisfying every transitive requirement.

The resolved list is printed as JSON, dependencies first.
`

type resolveCommand struct {
	registryFlags
	history bool
}

func (c *resolveCommand) Name() string      { return "resolve" }
func (c *resolveCommand) Args() string      { return "<request...>" }
func (c *resolveCommand) ShortHelp() string { return resolveShortHelp }
func (c *resolveCommand) LongHelp() string  { return resolveLongHelp }

func (c *resolveCommand) Register(fs *flag.FlagSet) {
	c.registryFlags.register(fs)
	fs.BoolVar(&c.history, "history", false, "print the resolution history trail")
}

func (c *resolveCommand) Run(args []string) error {
	registry, err := c.buildRegistry()
	if err != nil {
		return err
	}

	packages, history, err := wiz.Resolve(registry, args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(packages); err != nil {
		return err
	}

	if c.history {
		for _, e := range history.Entries() {
			fmt.Fprintf(os.Stderr, "%s %v\n", e.Action, e.Detail)
		}
	}
	return nil
}
