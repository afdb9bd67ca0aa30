package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
	"github.com/wricardo/mcp-training/fifteen/game/service"
	"github.com/wricardo/mcp-training/fifteen/game/session"
	"github.com/wricardo/mcp-training/fifteen/ui/terminal"
)

func runPlay(ctx context.Context, cmd *cli.Command) error {
	sessions, gameService, err := initializeServices(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	sessionID, err := startLocalSession(ctx, sessions, gameService, cmd.String("preset"), cmd.String("config-file"))
	if err != nil {
		return err
	}
	return terminal.Run(ctx, gameService, sessionID)
}

// startLocalSession creates the session the terminal plays. A preset file
// bypasses the config directory.
func startLocalSession(ctx context.Context, sessions *session.Manager, gameService service.GameService, preset, configFile string) (string, error) {
	if configFile != "" {
		cfg, err := engine.LoadGameConfig(configFile)
		if err != nil {
			return "", err
		}
		sess, err := sessions.Create("", cfg)
		if err != nil {
			return "", fmt.Errorf("failed to create session: %w", err)
		}
		return sess.ID, nil
	}

	info, err := gameService.CreateSession(ctx, preset)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}
