package main

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/reconcile"
)

func (intp *Intp) checkSplit() error {
	if intp.result == nil {
		return errors.New("not split yet")
	}
	return nil
}

func wordsOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkSplit(); err != nil {
		return err, false
	}
	words := intp.result.Words()
	if len(words) == 0 {
		pterm.Println("no word nodes (words not requested)")
		return nil, false
	}
	printNodeTable("Word", words, intp)
	return nil, false
}

func charsOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkSplit(); err != nil {
		return err, false
	}
	chars := intp.result.Chars()
	if len(chars) == 0 {
		pterm.Println("no char nodes (chars not requested)")
		return nil, false
	}
	printNodeTable("Char", chars, intp)
	return nil, false
}

func linesOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkSplit(); err != nil {
		return err, false
	}
	lines := intp.result.Lines()
	if len(lines) == 0 {
		pterm.Println("no line nodes (lines not requested)")
		return nil, false
	}
	printNodeTable("Line", lines, intp)
	return nil, false
}

func printNodeTable(kind string, nodes []*html.Node, intp *Intp) {
	data := [][]string{
		{"Index", kind, "Left", "Top", "Width"},
	}
	for i, n := range nodes {
		left, top, width := "-", "-", "-"
		if r, ok := intp.flow.Bounds(n); ok {
			left = fmt.Sprintf("%.2f", float64(r.Left)/64.0)
			top = fmt.Sprintf("%.2f", float64(r.Top)/64.0)
			width = fmt.Sprintf("%.2f", float64(r.Width)/64.0)
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%q", dom.Text(n)),
			left, top, width,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func markupOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println(dom.Serialize(intp.root))
	return nil, false
}

func printChanges(changes []reconcile.Change[string]) {
	data := [][]string{
		{"Status", "Value", "ID", "Prev", "Next"},
	}
	for _, c := range changes {
		prev, next := "-", "-"
		if c.PrevIndex >= 0 {
			prev = fmt.Sprintf("%d", c.PrevIndex)
		}
		if c.NextIndex >= 0 {
			next = fmt.Sprintf("%d", c.NextIndex)
		}
		status := c.Status.String()
		switch c.Status {
		case reconcile.Enter:
			status = pterm.Green(status)
		case reconcile.Exit:
			status = pterm.Red(status)
		}
		data = append(data, []string{
			status, fmt.Sprintf("%q", c.Value), fmt.Sprintf("%d", c.ID), prev, next,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
