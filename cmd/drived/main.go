// Package main is the drive daemon. It runs the drive loop against simulated controllers, motors
// and gyro, as configured by a JSON config file.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/fieldbot/drivecore/config"
	"github.com/fieldbot/drivecore/logging"
)

const (
	// Flags.
	flagConfig   = "config"
	flagDebug    = "debug"
	flagLogFile  = "log-file"
	flagMode     = "mode"
	flagWatch    = "watch"
	flagInterval = "status-interval"
)

func main() {
	logger := logging.NewLogger("drived")

	app := &cli.App{
		Name:  "drived",
		Usage: "run the drive loop",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
				Value:   "drive.json",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write JSON logs to `FILE`, rotated",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger.SetLevel(logging.DEBUG)
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return runAction(c, logger)
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the drive loop until interrupted",
				Flags: runFlags(),
				Action: func(c *cli.Context) error {
					return runAction(c, logger)
				},
			},
			{
				Name:  "check",
				Usage: "validate the config and print the drive layout",
				Action: func(c *cli.Context) error {
					cfg, err := config.Read(c.String(flagConfig))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, describe(cfg))
					return err
				},
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of the config file",
				Action: func(c *cli.Context) error {
					out, err := config.SchemaJSON()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, string(out))
					return err
				},
			},
		},
	}
	app.Flags = append(app.Flags, runFlags()...)

	if err := app.Run(os.Args); err != nil {
		logger.Errorw("drived failed", "error", err)
		//nolint:errcheck
		logger.Sync()
		os.Exit(1)
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  flagMode,
			Usage: "run `MODE`: disabled, autonomous, teleop or test",
			Value: "teleop",
		},
		&cli.BoolFlag{
			Name:  flagWatch,
			Usage: "reload the config file when it changes",
		},
		&cli.DurationFlag{
			Name:  flagInterval,
			Usage: "how often to log drive status; 0 disables",
			Value: defaultStatusInterval,
		},
	}
}
