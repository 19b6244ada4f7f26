package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jschwinger233/dwarfctags/version"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprint(c.App.Writer, version.String())
	}
}

func main() {
	app := &cli.App{
		Name:      "dwarfctags",
		Usage:     "generate a tags file from the DWARF debug info of a binary",
		UsageText: "dwarfctags [options] <binary>",
		Version:   version.VERSION,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "-",
				Usage:   "write the tags to `FILE` instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Value: false,
				Usage: "log how many entries were indexed and skipped",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Value: false,
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		Action: func(ctx *cli.Context) (err error) {
			if ctx.NArg() != 1 {
				cli.ShowAppHelp(ctx)
				return cli.Exit("exactly one binary is required", 2)
			}
			bin := ctx.Args().First()

			indexer, err := OpenIndexer(bin)
			if err != nil {
				return
			}
			if err = indexer.Index(); err != nil {
				return errors.WithMessage(err, bin)
			}

			var out bytes.Buffer
			if err = indexer.Emit(&out); err != nil {
				return
			}
			if ctx.Bool("stats") {
				s := indexer.Stats()
				log.WithFields(log.Fields{
					"units":       s.Units,
					"entries":     s.Entries,
					"subprograms": s.Subprograms,
					"skipped":     s.Skipped,
					"records":     s.Records,
					"duplicates":  s.Duplicates,
				}).Info("indexed")
			}
			return writeOutput(ctx.String("output"), out.Bytes())
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// writeOutput writes the finished index. A named file is only created
// here, after indexing succeeded.
func writeOutput(path string, data []byte) (err error) {
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = f.Write(data)
	return
}
