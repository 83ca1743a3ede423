package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"vision-classifier/internal/api/telegram"
	"vision-classifier/internal/domain/entity"
)

func botCmd() *cli.Command {
	var token string

	return &cli.Command{
		Name:  "bot",
		Usage: "Run the Telegram bot",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "token",
				Usage:       "Telegram bot token",
				Destination: &token,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, rt, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if cmd.IsSet("token") {
				rt.cfg.Telegram.Token = token
			}
			if rt.cfg.Telegram.Token == "" {
				return fmt.Errorf("%w: TELEGRAM_TOKEN is required", entity.ErrConfig)
			}

			bot, err := telegram.NewBot(rt.cfg.Telegram.Token, rt.c.UserService, rt.c.ClassificationService, rt.log)
			if err != nil {
				return err
			}

			rt.log.Info("bot is running")
			return bot.Run(ctx)
		},
	}
}
