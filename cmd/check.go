package cmd

import (
	"fmt"

	"github.com/urfave/cli"
)

var checkCommand = cli.Command{
	Name:    "check",
	Aliases: []string{"c"},
	Usage:   "Validate a grammar and report left-recursive cycles",
	Action:  check,
	Flags:   []cli.Flag{grammarFlag},
}

func check(c *cli.Context) error {
	g, _, err := loadGrammar()
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "%s: %d variant(s)\n", inGrammarFile, len(g.Names()))
	for _, cycle := range g.Cycles() {
		fmt.Fprintf(w, "cycle: %s\n", cycle)
	}
	return nil
}
