package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ngcstream/gcode/config"
	"github.com/ngcstream/gcode/parser"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		configPath  = flag.String("config", "", "Load dialect configuration from a TOML file (default: built-in base dialect)")
		verbose     = flag.Bool("verbose", false, "Print a byte position alongside each directive")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("gcode %s (%s)\n", Version, Commit)
		return
	}

	dialect := config.DefaultDialect()
	if *configPath != "" {
		loaded, err := config.LoadDialectFrom(*configPath)
		if err != nil {
			log.Fatalf("loading dialect config: %v", err)
		}
		dialect = loaded
	}

	var r io.Reader = os.Stdin
	if args := flag.Args(); len(args) > 0 {
		f, err := os.Open(args[0]) // #nosec G304 -- user-specified source path
		if err != nil {
			log.Fatalf("opening %s: %v", args[0], err)
		}
		defer f.Close()
		r = f
	}

	p := parser.NewParser(r, dialect)
	for {
		d, err := p.Next()
		if err == io.EOF {
			return
		}
		if perr, ok := err.(*parser.Error); ok {
			fmt.Fprintf(os.Stderr, "%s\n", perr)
			continue
		}
		if err != nil {
			log.Fatalf("reading input: %v", err)
		}
		if *verbose {
			fmt.Printf("%s: %s\n", d.Pos, d)
		} else {
			fmt.Println(d)
		}
	}
}
