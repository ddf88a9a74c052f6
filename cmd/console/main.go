// Command console runs one complete game in the terminal: AI (or human-typed)
// players, a game master reviewing every decision at the keyboard, and the
// spectator feed printed with colors.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/config"
	"github.com/vdtran/werewolf-gm/internal/game"
	"github.com/vdtran/werewolf-gm/internal/moderator"
	"github.com/vdtran/werewolf-gm/internal/observer"
	"github.com/vdtran/werewolf-gm/internal/orchestrator"
	"github.com/vdtran/werewolf-gm/internal/producer"
	"github.com/vdtran/werewolf-gm/internal/prompt"
	"github.com/vdtran/werewolf-gm/internal/report"
)

func main() {
	players := flag.String("players", "Alice,Bob,Carol,Dave,Eve,Frank", "comma-separated roster of 6-11 player names")
	rosterFile := flag.String("roster", "", "JSON file with an array of player names, overrides -players")
	auto := flag.Bool("auto", false, "run unattended: accept valid responses, skip failures")
	human := flag.Bool("human", false, "type every player response by hand instead of calling a model")
	noColor := flag.Bool("no-color", false, "disable ANSI colors in the spectator feed")
	reportPath := flag.String("report", "", "write the after-game text report to this file")
	exportPath := flag.String("export", "", "write the JSON game export to this file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var names []string
	if *rosterFile != "" {
		if names, err = loadRoster(*rosterFile); err != nil {
			log.Fatalf("load roster: %v", err)
		}
	} else {
		for _, n := range strings.Split(*players, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	state, err := game.Setup(uuid.NewString(), names, nil)
	if err != nil {
		log.Fatalf("game setup: %v", err)
	}

	var prod broker.DecisionProducer
	if *human {
		prod = producer.NewConsole(os.Stdin, os.Stdout)
	} else {
		prod = producer.NewOpenAI(producer.ModelConfig{
			BaseURL: cfg.ModelBaseURL,
			APIKey:  cfg.ModelAPIKey,
			Model:   cfg.ModelName,
		})
	}

	var mod broker.Moderator
	var gate orchestrator.ContinueGate
	if *auto {
		a := moderator.NewAuto(1)
		mod, gate = a, a
	} else {
		c := moderator.NewConsole(os.Stdin, os.Stdout, state)
		mod, gate = c, c
	}

	b := broker.New(prod, mod, prompt.NewBuilder(),
		broker.WithTransportRetries(cfg.TransportRetries, cfg.TransportDelay))
	obs := observer.NewTerminal(os.Stdout, !*noColor)
	orch := orchestrator.New(state, b, obs,
		orchestrator.WithMaxDays(cfg.MaxDays),
		orchestrator.WithContinueGate(gate))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := orch.Run(ctx); err != nil {
		log.Fatalf("game run: %v", err)
	}

	fmt.Println()
	if err := report.WriteText(os.Stdout, state); err != nil {
		log.Fatalf("write report: %v", err)
	}
	if *reportPath != "" {
		if err := writeFile(*reportPath, func(f *os.File) error { return report.WriteText(f, state) }); err != nil {
			log.Fatalf("write report file: %v", err)
		}
	}
	if *exportPath != "" {
		if err := writeFile(*exportPath, func(f *os.File) error { return report.WriteJSON(f, state) }); err != nil {
			log.Fatalf("write export file: %v", err)
		}
	}
}

func loadRoster(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return names, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}
