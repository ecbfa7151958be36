package cmd

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/arr-ai/descent/parser"
)

var inFile string
var startingRule string
var verboseMode bool
var fullMode bool
var jsonMode bool
var stepLimit int
var parseCommand = cli.Command{
	Name:    "parse",
	Aliases: []string{"p"},
	Usage:   "Parse input with a grammar",
	Action:  parse,
	Flags: []cli.Flag{
		grammarFlag,
		cli.StringFlag{
			Name:        "start",
			Usage:       "variant to start parsing from",
			Required:    true,
			Destination: &startingRule,
		},
		cli.StringFlag{
			Name:        "input",
			Usage:       "input file, - or empty for stdin",
			TakesFile:   true,
			Destination: &inFile,
		},
		cli.BoolFlag{
			Name:        "full",
			Usage:       "fail unless the whole input is consumed",
			Destination: &fullMode,
		},
		cli.BoolFlag{
			Name:        "json",
			Usage:       "print the parse tree as JSON",
			Destination: &jsonMode,
		},
		cli.IntFlag{
			Name:        "steps",
			Usage:       "maximum number of match attempts, 0 for no limit",
			Destination: &stepLimit,
		},
		cli.BoolFlag{
			Name:        "v",
			Usage:       "verbose logging",
			Destination: &verboseMode,
		},
	},
}

func readInput(source string) (string, error) {
	var buf []byte
	var err error
	switch source {
	case "", "-":
		buf, err = ioutil.ReadAll(os.Stdin)
	default:
		buf, err = ioutil.ReadFile(source)
	}
	return string(buf), err
}

func parse(c *cli.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if verboseMode {
				fmt.Fprint(c.App.ErrWriter, errors.Wrap(r, 2).ErrorStack())
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	g, _, err := loadGrammar()
	if err != nil {
		return err
	}
	input, err := readInput(inFile)
	if err != nil {
		return err
	}

	if verboseMode {
		logrus.SetLevel(logrus.TraceLevel)
	}
	tree, err := g.ParseWithOptions(input, startingRule, parser.Options{
		RequireFull: fullMode,
		StepLimit:   stepLimit,
	})
	if err != nil {
		return err
	}

	if jsonMode {
		out, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(out))
		return nil
	}
	fmt.Fprintln(c.App.Writer, tree.TreeView(startingRule))
	return nil
}
