package cmd

import (
	"bytes"
	"fmt"
	"go/format"
	"io/ioutil"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/arr-ai/descent/cmd/codegen"
)

var pkgName string
var outFile string
var genCommand = cli.Command{
	Name:    "gen",
	Aliases: []string{"g"},
	Usage:   "Generate Go code for a grammar",
	Action:  gen,
	Flags: []cli.Flag{
		grammarFlag,
		cli.StringFlag{
			Name:        "pkg",
			Usage:       "name of the generated package",
			Required:    true,
			Destination: &pkgName,
		},
		cli.StringFlag{
			Name:        "start",
			Usage:       "variant for the generated Parse function",
			Destination: &startingRule,
		},
		cli.StringFlag{
			Name:        "output",
			Usage:       "filename to write the output to",
			TakesFile:   true,
			Destination: &outFile,
		},
	},
}

func gen(c *cli.Context) error {
	g, d, err := loadGrammar()
	if err != nil {
		return err
	}
	tmpldata := codegen.TemplateData{
		CommandLine: strings.Join(os.Args[1:], " "),
		PackageName: pkgName,
		Idents:      codegen.IdentsWriter{Grammar: d},
		Grammar:     codegen.MakeGrammar(d),
		Types:       codegen.MakeTypes(d),
	}
	if startingRule != "" {
		if _, has := g.Variant(startingRule); !has {
			return fmt.Errorf("unknown start variant %q", startingRule)
		}
		tmpldata.StartRule = startingRule
		tmpldata.StartRuleTypeName = codegen.GoTypeName(startingRule)
	}

	var buf bytes.Buffer
	if err := codegen.Write(&buf, tmpldata); err != nil {
		return err
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return err
	}

	switch outFile {
	case "", "-":
		_, err = c.App.Writer.Write(out)
		return err
	default:
		return ioutil.WriteFile(outFile, out, 0644)
	}
}
