package main

import (
	"flag"
	"fmt"

	"github.com/wizcli/wiz/internal/wiz"
)

const exportShortHelp = `Export a single resolved definition to a directory as JSON`
const exportLongHelp = `
Export discovers a registry under one or more -path search roots, looks up
the highest version of the definition matching the given request, and
writes it to -out as "{identifier}[-{version}].json". Variant extras in the
request are not applied: the definition is written with all its variants.
`

type exportCommand struct {
	registryFlags
	out       string
	overwrite bool
}

func (c *exportCommand) Name() string      { return "export" }
func (c *exportCommand) Args() string      { return "<request>" }
func (c *exportCommand) ShortHelp() string { return exportShortHelp }
func (c *exportCommand) LongHelp() string  { return exportLongHelp }

func (c *exportCommand) Register(fs *flag.FlagSet) {
	c.registryFlags.register(fs)
	fs.StringVar(&c.out, "out", ".", "directory to export the definition into")
	fs.BoolVar(&c.overwrite, "overwrite", false, "overwrite an existing export target")
}

func (c *exportCommand) Run(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("export takes exactly one request argument")
	}

	registry, err := c.buildRegistry()
	if err != nil {
		return err
	}

	req, err := wiz.ParseRequirement(args[0])
	if err != nil {
		return err
	}

	def, err := registry.Query(req)
	if err != nil {
		return err
	}

	return registry.Export(c.out, def, c.overwrite)
}
