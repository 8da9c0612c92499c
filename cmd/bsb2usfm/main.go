// Command bsb2usfm converts the BSB tables dataset into one USFM document
// per book.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/BSB-publishing/bsb2usfm/core/convert"
	"github.com/BSB-publishing/bsb2usfm/internal/config"
	"github.com/BSB-publishing/bsb2usfm/internal/logging"
)

const version = "1.0.0"

// CLI defines the command-line interface for bsb2usfm.
var CLI struct {
	Input  string `arg:"" optional:"" help:"Dataset path: TSV, xz-compressed TSV, or SQLite database; may come from the config file instead" type:"existingfile"`
	Output string `name:"output" short:"o" default:"%.usfm" help:"Output path template; % stands in for the book code"`

	Footnotes string   `name:"footnotes" short:"f" type:"existingfile" help:"Footnote styling rules (TSV)"`
	Names     string   `name:"names" short:"n" type:"existingfile" help:"Book names XML with long/short/abbr overrides"`
	Books     []string `name:"book" short:"b" help:"Convert only these book codes (repeatable)"`
	Jobs      int      `help:"Concurrent book workers; 0 means one per CPU"`

	Config string `type:"existingfile" help:"YAML config file; flags override its values"`
	Report string `help:"Write a JSON run report to this path"`

	LogLevel  string           `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string           `name:"log-format" default:"text" enum:"text,json" help:"Log format"`
	Version   kong.VersionFlag `help:"Print version and exit"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("bsb2usfm"),
		kong.Description("Convert the Berean Standard Bible tables dataset to USFM"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(run())
}

func run() error {
	if CLI.Config != "" {
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			return err
		}
		applyConfig(cfg)
	}
	if CLI.Input == "" {
		return fmt.Errorf("no input dataset: pass it as an argument or set input in the config file")
	}
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := convert.Run(ctx, convert.Options{
		Input:          CLI.Input,
		OutputTemplate: CLI.Output,
		FootnotesPath:  CLI.Footnotes,
		NamesPath:      CLI.Names,
		Books:          CLI.Books,
		Jobs:           CLI.Jobs,
	})
	if rep != nil {
		if CLI.Report != "" {
			if werr := rep.WriteFile(CLI.Report); werr != nil && err == nil {
				err = werr
			}
		}
		fmt.Printf("%d of %d books written (%d rows read, %d skipped)\n",
			rep.Written(), len(rep.Books), rep.RowsRead, rep.RowsSkipped)
	}
	return err
}

// applyConfig fills in settings the command line left at their defaults.
func applyConfig(cfg *config.Config) {
	if CLI.Input == "" {
		CLI.Input = cfg.Input
	}
	if CLI.Output == "%.usfm" && cfg.Output != "" {
		CLI.Output = cfg.Output
	}
	if CLI.Footnotes == "" {
		CLI.Footnotes = cfg.Footnotes
	}
	if CLI.Names == "" {
		CLI.Names = cfg.Names
	}
	if len(CLI.Books) == 0 {
		CLI.Books = cfg.Books
	}
	if CLI.Jobs == 0 {
		CLI.Jobs = cfg.Jobs
	}
	if CLI.Report == "" {
		CLI.Report = cfg.Report
	}
	if CLI.LogLevel == "info" && cfg.LogLevel != "" {
		CLI.LogLevel = cfg.LogLevel
	}
	if CLI.LogFormat == "text" && cfg.LogFormat != "" {
		CLI.LogFormat = cfg.LogFormat
	}
}
