package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/wizcli/wiz/internal/wiz"
)

const viewShortHelp = `Query the registry for a single requirement without resolving a graph`
const viewLongHelp = `
View discovers a registry under one or more -path search roots and prints the
definition(s) that the given request resolves to, without building or
resolving a dependency graph. Useful for inspecting a single definition file
or variant set.
`

type viewCommand struct {
	registryFlags
}

func (c *viewCommand) Name() string      { return "view" }
func (c *viewCommand) Args() string      { return "<request>" }
func (c *viewCommand) ShortHelp() string { return viewShortHelp }
func (c *viewCommand) LongHelp() string  { return viewLongHelp }

func (c *viewCommand) Register(fs *flag.FlagSet) {
	c.registryFlags.register(fs)
}

func (c *viewCommand) Run(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("view takes exactly one request argument")
	}

	registry, err := c.buildRegistry()
	if err != nil {
		return err
	}

	req, err := wiz.ParseRequirement(args[0])
	if err != nil {
		return err
	}

	candidates, err := registry.Resolve(req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(candidates)
}
