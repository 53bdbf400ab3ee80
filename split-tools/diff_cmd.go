package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"

	"github.com/npillmayer/textsplit/reconcile"
)

func runDiffCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	prev := strings.Split(args["prev"].Value, ",")
	next := strings.Split(args["next"].Value, ",")
	snapshot := reconcile.NewSnapshot(prev)
	snapshot, changes := reconcile.Reconcile(snapshot, next)

	data := [][]string{
		{"Status", "Value", "ID", "Prev", "Next"},
	}
	persisted := 0
	for _, c := range changes {
		prevInx, nextInx := "-", "-"
		if c.PrevIndex >= 0 {
			prevInx = fmt.Sprintf("%d", c.PrevIndex)
		}
		if c.NextIndex >= 0 {
			nextInx = fmt.Sprintf("%d", c.NextIndex)
		}
		status := c.Status.String()
		switch c.Status {
		case reconcile.Enter:
			status = pterm.Green(status)
		case reconcile.Exit:
			status = pterm.Red(status)
		default:
			persisted++
		}
		data = append(data, []string{
			status, fmt.Sprintf("%q", c.Value), fmt.Sprintf("%d", c.ID), prevInx, nextInx,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Printf("%d of %d tokens persisted; snapshot now tracks %d tokens\n",
		persisted, len(prev), len(snapshot.Values))
}
