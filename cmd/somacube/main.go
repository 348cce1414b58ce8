// SomaCube: interactive Soma cube puzzle board
//
// Loads figures from the puzzle service (or a local figure directory), lets
// the user place and turn the seven Soma pieces from the keyboard and
// submits finished boards to the checker.
//
// Build:
//   go build -o somacube ./cmd/somacube
//
// Run offline against local figures:
//   somacube -offline -figures ./figures

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/piwi3910/SomaCube/internal/app"
	"github.com/piwi3910/SomaCube/internal/client"
	"github.com/piwi3910/SomaCube/internal/journal"
	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/monitoring"
	"github.com/piwi3910/SomaCube/internal/project"
)

func main() {
	configPath := flag.String("config", project.DefaultConfigPath(), "path to the config file")
	server := flag.String("server", "", "puzzle service URL (overrides config)")
	shape := flag.String("shape", "", "figure to load at start (overrides config)")
	timeout := flag.Int("timeout", 0, "HTTP timeout in seconds (overrides config)")
	journalPath := flag.String("journal", "", "solution journal database (overrides config)")
	figures := flag.String("figures", project.DefaultFigureDir(), "local figure directory")
	offline := flag.Bool("offline", false, "do not contact the puzzle service")
	verbose := flag.Bool("verbose", false, "log service requests and journal writes")
	flag.Parse()

	monitoring.Verbose = *verbose

	cfg, err := project.LoadAppConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	applyFlags(&cfg, *server, *shape, *timeout, *journalPath)

	opts := app.Options{
		Config:    cfg,
		FigureDir: *figures,
		Notifier: app.NotifierFunc(func(m model.Message) {
			fmt.Fprintln(os.Stdout, m.Text)
		}),
	}
	if !*offline {
		hc := client.NewStandardClient(&http.Client{Timeout: cfg.Timeout()})
		opts.Checker = client.New(cfg.ServerURL, hc)
	}
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			log.Fatalf("opening journal: %v", err)
		}
		defer j.Close()
		opts.Journal = j
	}

	ctrl, err := app.New(opts)
	if err != nil {
		log.Fatalf("starting: %v", err)
	}

	ctx := context.Background()
	if cfg.DefaultShape != "" {
		ctrl.LoadShape(ctx, cfg.DefaultShape)
	}

	sh := newShell(ctrl, os.Stdout)
	sh.run(ctx, os.Stdin)

	if err := project.SaveAppConfig(*configPath, ctrl.Config()); err != nil {
		monitoring.Logf("saving config: %v", err)
	}
}

// applyFlags overrides config values with the non-zero flag values.
func applyFlags(cfg *model.AppConfig, server, shape string, timeout int, journalPath string) {
	if server != "" {
		cfg.ServerURL = server
	}
	if shape != "" {
		cfg.DefaultShape = shape
	}
	if timeout > 0 {
		cfg.TimeoutSeconds = timeout
	}
	if journalPath != "" {
		cfg.JournalPath = journalPath
	}
}
