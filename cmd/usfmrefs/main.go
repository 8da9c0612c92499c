// Command usfmrefs scans USFM documents and writes the cross-reference
// index they contain, optionally with the per-footnote marker table.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/BSB-publishing/bsb2usfm/core/refindex"
	"github.com/BSB-publishing/bsb2usfm/internal/logging"
)

const version = "1.0.0"

// CLI defines the command-line interface for usfmrefs.
var CLI struct {
	Inputs []string `arg:"" help:"USFM files to scan" type:"existingfile"`
	Output string   `name:"output" short:"o" help:"Index output path; default is stdout"`

	FootnoteMarkers string `name:"footnote-markers" help:"Also write the per-footnote marker table (TSV) to this path"`
	Jobs            int    `help:"Concurrent file workers; 0 means one per file"`

	LogLevel  string           `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string           `name:"log-format" default:"text" enum:"text,json" help:"Log format"`
	Version   kong.VersionFlag `help:"Print version and exit"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("usfmrefs"),
		kong.Description("Extract the cross-reference index from USFM documents"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(run())
}

func run() error {
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	jobs := CLI.Jobs
	if jobs < 1 {
		jobs = len(CLI.Inputs)
	}
	res, err := refindex.ExtractFiles(CLI.Inputs, jobs)
	if err != nil {
		return err
	}

	if err := writeTo(CLI.Output, res.WriteIndex); err != nil {
		return err
	}
	if CLI.FootnoteMarkers != "" {
		if err := writeTo(CLI.FootnoteMarkers, res.WriteMarkers); err != nil {
			return err
		}
	}
	return nil
}

// writeTo runs a writer against a file path, or stdout when path is empty.
func writeTo(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
