package main

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/dharmasatrya/besserbahn/internal/config"
	"github.com/dharmasatrya/besserbahn/internal/handler"
	"github.com/dharmasatrya/besserbahn/internal/models"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "listen port, overrides PORT",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port := c.String("port"); port != "" {
				cfg.Port = port
			}

			app, err := newApp(cfg, true)
			if err != nil {
				return err
			}
			defer app.Close()

			e := handler.NewServer(handler.NewSearchHandler(app.service))

			log.Info().
				Str("port", cfg.Port).
				Str("provider", cfg.ProviderBaseURL).
				Str("cache", cfg.CacheBackend).
				Msg("Starting BesserBahn API")

			return e.Start(":" + cfg.Port)
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "search once and print the route options as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true, Usage: "origin city or station"},
			&cli.StringFlag{Name: "to", Required: true, Usage: "destination city or station"},
			&cli.StringFlag{Name: "date", Required: true, Usage: "departure date, YYYY-MM-DD"},
			&cli.StringFlag{Name: "time", Required: true, Usage: "departure time, HH:MM"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			app, err := newApp(cfg, false)
			if err != nil {
				return err
			}
			defer app.Close()

			response, err := app.service.Search(c.Context, models.SearchQuery{
				FromCity: c.String("from"),
				ToCity:   c.String("to"),
				Date:     c.String("date"),
				Time:     c.String("time"),
			})
			if err != nil {
				return err
			}
			return printJSON(response)
		},
	}
}

func stationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "look up stations matching a name",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Required: true},
			&cli.IntFlag{Name: "results", Value: models.DefaultStationResults},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			app, err := newApp(cfg, false)
			if err != nil {
				return err
			}
			defer app.Close()

			found, err := app.service.LookupStations(c.Context, c.String("query"), c.Int("results"))
			if err != nil {
				return err
			}
			return printJSON(found)
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
