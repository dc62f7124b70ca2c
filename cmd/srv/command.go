package main

import "github.com/urfave/cli/v2"

// loadApp creates an app with sane defaults.
func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "steadyhabits"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       []cli.Flag{},
			Category:    "Api",
			Description: `Used for start service api, the main service included all apis.`,
		},
		{
			Action:   server.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database to a given version",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "The migration version to apply",
					Value: "auto",
				},
			},
			Description: `Used for bring the database schema to a given version.`,
		},
	}

	s.app = app
}
