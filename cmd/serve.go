package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"vision-classifier/internal/api/rest"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API (/predict, /health)",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, rt, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if cmd.IsSet("addr") {
				rt.cfg.Server.Addr = addr
			}
			if cmd.IsSet("read-timeout") {
				rt.cfg.Server.ReadTimeout = readTimeout
			}

			svc := rt.c.ClassificationService
			server := rest.NewServer(svc, rt.log, rest.Options{
				ModelName: svc.Model().Name,
				Labels:    len(svc.Model().Labels),
				MaxUpload: rt.cfg.Server.MaxUpload,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			rt.log.Info("starting server", "address", rt.cfg.Server.Addr)
			sc := echo.StartConfig{
				Address: rt.cfg.Server.Addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = rt.cfg.Server.ReadTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
