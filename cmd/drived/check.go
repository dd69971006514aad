package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/fieldbot/drivecore/config"
)

// describe renders the configured controllers and actuators, and the side each actuator drives.
func describe(cfg *config.Config) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "drive type %s at %v Hz, read timeout %s\n", cfg.DriveType, cfg.FrequencyHz, cfg.ReadTimeout)

	controllers := table.NewWriter()
	controllers.SetTitle("Controllers")
	controllers.AppendHeader(table.Row{"#", "Axes", "Buttons"})
	for i, c := range cfg.Controllers {
		controllers.AppendRow(table.Row{i, c.Axes, c.Buttons})
	}
	sb.WriteString(controllers.Render())
	sb.WriteString("\n")

	actuators := table.NewWriter()
	actuators.SetTitle("Actuators")
	actuators.AppendHeader(table.Row{"#", "Name", "Side", "Inverted"})
	for i, a := range cfg.Actuators {
		side := "left"
		if i%2 == 1 {
			side = "right"
		}
		actuators.AppendRow(table.Row{i, a.Name, side, a.Invert})
	}
	sb.WriteString(actuators.Render())
	return sb.String()
}
