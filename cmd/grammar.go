package cmd

import (
	"github.com/urfave/cli"

	"github.com/arr-ai/descent/def"
	"github.com/arr-ai/descent/parser"
)

var inGrammarFile string

var grammarFlag = cli.StringFlag{
	Name:        "grammar",
	Usage:       "grammar definition file (.json, .yaml or .yml)",
	Required:    true,
	TakesFile:   true,
	Destination: &inGrammarFile,
}

// loadGrammar reads and compiles the grammar file. Transforms cannot be loaded from a
// file, so every named transform leaves its matches unchanged.
func loadGrammar() (*parser.Grammar, def.Grammar, error) {
	d, err := def.Load(inGrammarFile)
	if err != nil {
		return nil, nil, err
	}
	transforms := map[string]parser.Transform{}
	for _, name := range d.TransformNames() {
		transforms[name] = func(n parser.Node) parser.Node { return n }
	}
	g, err := def.Compile(d, transforms)
	if err != nil {
		return nil, nil, err
	}
	return g, d, nil
}
