package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/wizcli/wiz/internal/wiz"
)

var verbose = flag.Bool("v", false, "enable verbose logging")

type command interface {
	Name() string
	Args() string
	ShortHelp() string
	LongHelp() string
	Register(*flag.FlagSet)
	Run([]string) error
}

func main() {
	commands := []command{
		&resolveCommand{},
		&viewCommand{},
		&exportCommand{},
	}

	usage := func() {
		fmt.Fprintln(os.Stderr, "Usage: wiz <command>")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr)
		w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
		for _, c := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", c.Name(), c.ShortHelp())
		}
		w.Flush()
		fmt.Fprintln(os.Stderr)
	}

	if len(os.Args) <= 1 || strings.Contains(strings.ToLower(os.Args[1]), "help") || strings.ToLower(os.Args[1]) == "-h" {
		usage()
		os.Exit(1)
	}

	for _, c := range commands {
		if c.Name() != os.Args[1] {
			continue
		}

		fs := flag.NewFlagSet(c.Name(), flag.ExitOnError)
		fs.BoolVar(verbose, "v", false, "enable verbose logging")
		c.Register(fs)
		resetUsage(fs, c.Name(), c.Args(), c.LongHelp())

		if err := fs.Parse(os.Args[2:]); err != nil {
			fs.Usage()
			os.Exit(1)
		}

		if err := c.Run(fs.Args()); err != nil {
			if kind, ok := err.(wiz.WizError); ok {
				fmt.Fprintf(os.Stderr, "%s: %v\n", kind.Kind(), err)
			} else {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "%s: no such command\n", os.Args[1])
	usage()
	os.Exit(1)
}

func resetUsage(fs *flag.FlagSet, name, args, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		defValue := f.DefValue
		if defValue == "" {
			defValue = "<none>"
		}
		fmt.Fprintf(flagWriter, "\t-%s\t%s (default: %s)\n", f.Name, f.Usage, defValue)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wiz %s %s\n", name, args)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, strings.TrimSpace(longHelp))
		fmt.Fprintln(os.Stderr)
		if hasFlags {
			fmt.Fprintln(os.Stderr, "Flags:")
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, flagBlock.String())
		}
	}
}

func newLogger() *wiz.Logger {
	return wiz.NewLogger(os.Stderr, *verbose)
}

// registryFlags are the flags shared by every command that needs to build a
// Registry: search paths, recursion depth, an optional config file, and the
// optional request/system narrowing spec.md §4.B's fetch operation allows.
type registryFlags struct {
	paths    pathList
	maxDepth int
	config   string
	requests pathList
	system   systemFlags
}

func (rf *registryFlags) register(fs *flag.FlagSet) {
	fs.Var(&rf.paths, "path", "registry search path (repeatable)")
	fs.IntVar(&rf.maxDepth, "max-depth", -1, "maximum recursion depth (-1 for unlimited)")
	fs.StringVar(&rf.config, "config", wiz.ConfigName, "path to wizconfig.toml")
	fs.Var(&rf.requests, "request", "narrow discovery to definitions matching this name/specifier (repeatable)")
	fs.Var(&rf.system, "system", "system constraint key=value applied to the system filter (repeatable)")
}

func (rf *registryFlags) buildRegistry() (*wiz.Registry, error) {
	cfg, err := wiz.LoadConfig(rf.config)
	if err != nil {
		return nil, err
	}

	paths := []string(rf.paths)
	if len(paths) == 0 {
		paths = cfg.Paths
	}
	maxDepth := rf.maxDepth
	if maxDepth < 0 && cfg.MaxDepth >= 0 {
		maxDepth = cfg.MaxDepth
	}
	system := cfg.System
	if len(rf.system) > 0 {
		system = map[string]string(rf.system)
	}

	return wiz.Fetch(wiz.DiscoverOptions{
		Paths:    paths,
		MaxDepth: maxDepth,
		Requests: rf.requests,
		System:   system,
		Logger:   newLogger(),
	})
}

// pathList is a flag.Value collecting repeated -path/-request flags.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }
func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// systemFlags is a flag.Value collecting repeated -system key=value flags
// into the map Fetch's system filter expects.
type systemFlags map[string]string

func (s systemFlags) String() string {
	parts := make([]string, 0, len(s))
	for k, v := range s {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (s *systemFlags) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("invalid -system value %q, want key=value", v)
	}
	if *s == nil {
		*s = make(systemFlags)
	}
	(*s)[key] = value
	return nil
}
