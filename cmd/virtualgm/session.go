package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/qui-ball/virtualGM/internal/config"
	"github.com/qui-ball/virtualGM/internal/console"
	"github.com/qui-ball/virtualGM/internal/logger"
	"github.com/qui-ball/virtualGM/pkg/actor"
	"github.com/qui-ball/virtualGM/pkg/chat"
	"github.com/qui-ball/virtualGM/pkg/dice"
	"github.com/qui-ball/virtualGM/pkg/prompts"
	"github.com/qui-ball/virtualGM/pkg/state"
	"github.com/qui-ball/virtualGM/pkg/tools"
	"github.com/qui-ball/virtualGM/pkg/turn"
)

const (
	farewell     = "The story pauses here. Farewell."
	turnFailedUI = "The GM could not finish that turn, so nothing changed. Try again."
)

type sessionOptions struct {
	Config *config.Config
	Model  turn.Model
	In     io.Reader
	Out    io.Writer
	Logger *slog.Logger
	Roller *dice.Roller
	// Events is optional.
	Events turn.EventSink
}

// sessionAnnouncer is implemented by event sinks that announce new sessions.
type sessionAnnouncer interface {
	PublishSessionStarted(ctx context.Context, gameID uuid.UUID, pcName string, flow string) error
}

// runSession plays one session until the player quits or input ends.
func runSession(ctx context.Context, opts sessionOptions) error {
	cfg := opts.Config
	pc, err := actor.DefaultSheet()
	if err != nil {
		return fmt.Errorf("failed to load character sheet: %w", err)
	}
	reg, err := tools.NewRegistry(cfg.ExperienceFlow)
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}

	gs := state.NewGameState(pc, cfg.StartingFearPerPC)
	log := logger.WithSession(opts.Logger, gs.ID.String())
	con := console.New(opts.In, opts.Out, cfg.WrapWidth)

	roller := opts.Roller
	if roller == nil {
		roller = dice.NewRoller()
	}
	env := &tools.Env{
		Game:   gs,
		Player: con,
		Roller: roller,
		Flow:   reg.Flow(),
		Logger: log,
	}

	opening := prompts.Opening(pc.Name)
	orch := turn.New(opts.Model, reg, env, chat.NewHistory(opening...), log)
	if opts.Events != nil {
		orch.WithEvents(opts.Events)
		if a, ok := opts.Events.(sessionAnnouncer); ok {
			if err := a.PublishSessionStarted(ctx, gs.ID, pc.Name, string(reg.Flow())); err != nil {
				log.Warn("Failed to announce session", "error", err)
			}
		}
	}

	log.Info("Session started",
		"pc", pc.Name,
		"experience_flow", string(reg.Flow()),
		"fear_pool", gs.FearPool)

	con.Banner("Type what your character does. Enter exit, quit or q to leave.")
	con.Notify(pc.Summary())
	con.Narrate(opening[len(opening)-1].Content)

	for {
		line, quit, err := con.ReadUtterance(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to read player input: %w", err)
		}
		if quit {
			con.Narrate(farewell)
			log.Info("Session ended", "fear_pool", gs.FearPool, "hp", gs.PC.HP)
			return nil
		}

		res, err := orch.PlayerTurn(ctx, line)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				con.Narrate(farewell)
				log.Info("Session ended during a turn", "error", err)
				return nil
			}
			logger.WithError(log, err).Error("Turn failed")
			con.Error(turnFailedUI)
			continue
		}

		log.Debug("Turn complete", "rounds", res.Rounds, "tool_calls", res.ToolCalls, "deferred", res.Deferred)
		con.Notify(fmt.Sprintf("%s  Fear %d", gs.PC.Summary(), gs.FearPool))
	}
}
