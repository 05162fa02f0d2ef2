package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/raketracker/internal/report"
	"github.com/lox/raketracker/internal/tui"
)

// ImportCmd imports hand-history files
type ImportCmd struct {
	Dir   string `arg:"" optional:"" help:"Directory to import (defaults to tracker.import_dir)"`
	Reset bool   `help:"Remove all stored hands before importing"`
}

func (c *ImportCmd) Run(app *App) error {
	dir := c.Dir
	if dir == "" {
		dir = app.cfg.Tracker.ImportDir
	} else {
		app.cfg.Tracker.ImportDir = dir
	}

	if c.Reset {
		if err := app.tracker.Reset(app.ctx); err != nil {
			return err
		}
	}

	res, err := app.tracker.Import(app.ctx, dir)
	if err != nil {
		return err
	}

	r := report.NewRenderer(app.out, report.Options{})
	fmt.Fprint(app.out, r.ImportSummary(res))
	return nil
}

// ResultsCmd reports rake and profit
type ResultsCmd struct {
	Period  string `arg:"" optional:"" default:"all" help:"cw, pw, cm, pm, all, since=DD/MM/YYYY, before=DD/MM/YYYY or between=DD/MM/YYYY-DD/MM/YYYY"`
	Chart   bool   `help:"Draw the cumulative profit chart and save it to chart.output_dir"`
	Pager   bool   `help:"Show the report in a scrollable pager"`
	NoColor bool   `help:"Disable colour output"`
}

func (c *ResultsCmd) Run(app *App) error {
	player, err := app.player()
	if err != nil {
		return err
	}

	res, err := app.tracker.Results(app.ctx, player, c.Period)
	if err != nil {
		return err
	}

	r := report.NewRenderer(app.out, report.Options{
		NoColor:     c.NoColor,
		ChartWidth:  app.cfg.Chart.Width,
		ChartHeight: app.cfg.Chart.Height,
	})

	var b strings.Builder
	b.WriteString(r.Results(res))

	if c.Chart && res.Profit.Hands > 0 {
		b.WriteString("\n")
		b.WriteString(r.Chart(res.Profit.Cumulative))

		path, err := report.SaveChart(app.cfg.Chart.OutputDir, res.Profit.From, res.Profit.To,
			res.Profit.Cumulative, app.cfg.Chart.Width, app.cfg.Chart.Height)
		if err != nil {
			return err
		}
		app.logger.Info("chart saved", "file", path)
	}

	if c.Pager {
		return tui.Page(app.ctx, fmt.Sprintf("%s · %s", res.Player, res.Period), b.String(), os.Stdin, app.out, app.logger)
	}
	fmt.Fprint(app.out, b.String())
	return nil
}

// ImportsCmd lists import history
type ImportsCmd struct {
	Limit int `short:"n" default:"20" help:"Number of runs to show (0 for all)"`
}

func (c *ImportsCmd) Run(app *App) error {
	runs, err := app.store.Imports(app.ctx, c.Limit)
	if err != nil {
		return err
	}
	r := report.NewRenderer(app.out, report.Options{})
	fmt.Fprint(app.out, r.Imports(runs))
	return nil
}

// PlayersCmd lists the names seen at the tables
type PlayersCmd struct {
	Limit int `short:"n" default:"20" help:"Number of players to show (0 for all)"`
}

func (c *PlayersCmd) Run(app *App) error {
	players, err := app.store.Players(app.ctx)
	if err != nil {
		return err
	}
	if c.Limit > 0 && len(players) > c.Limit {
		players = players[:c.Limit]
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Player", "Hands")
	for _, p := range players {
		t.Row(p.Name, strconv.Itoa(p.Hands))
	}
	fmt.Fprintln(app.out, t.String())
	return nil
}
