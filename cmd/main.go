package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

type VersionTags struct {
	Version   string
	GitCommit string
	BuildDate string
	BuildOS   string
}

func newApp(info VersionTags) *cli.App {
	app := cli.NewApp()

	app.EnableBashCompletion = true

	app.Name = "descent"
	app.Usage = "parse text with recursive-descent grammars"
	app.Version = info.Version

	app.Commands = []cli.Command{parseCommand, checkCommand, genCommand}
	return app
}

func Main(info VersionTags) {
	if err := newApp(info).Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
