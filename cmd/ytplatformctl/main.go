// Command ytplatformctl is the operator tool for the platform service:
// issuing API tokens, toggling feature flags and probing links.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/denisAlshanov/ytplatform/internal/config"
	"github.com/denisAlshanov/ytplatform/internal/services/auth"
	"github.com/denisAlshanov/ytplatform/internal/services/flags"
	"github.com/denisAlshanov/ytplatform/internal/services/platform"
	"github.com/denisAlshanov/ytplatform/internal/services/search"
	"github.com/denisAlshanov/ytplatform/internal/services/worker"
	"github.com/denisAlshanov/ytplatform/internal/services/youtube"
	"github.com/denisAlshanov/ytplatform/internal/services/ytdlp"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:  "ytplatformctl",
		Usage: "operate the YouTube platform service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "log `LEVEL` for service packages",
			},
		},
		Before: func(c *cli.Context) error {
			utils.SetLevel(c.String("log-level"))
			utils.SetOutput(os.Stderr)
			return nil
		},
		Commands: []*cli.Command{
			tokenCommand(),
			flagCommand(),
			probeCommand(),
		},
		HideHelpCommand: true,
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "issue a bearer token for a bot",
		ArgsUsage: "CLIENT",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "ttl",
				Value: 30 * 24 * time.Hour,
				Usage: "token lifetime",
			},
		},
		Action: func(c *cli.Context) error {
			client := c.Args().First()
			if client == "" {
				return cli.Exit("a client name is required", 2)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.API.JWTSecret == "" {
				return cli.Exit("JWT_SECRET is not set", 1)
			}

			svc := auth.NewJWTService(auth.JWTConfig{
				SecretKey:           cfg.API.JWTSecret,
				AccessTokenDuration: c.Duration("ttl"),
			})
			token, err := svc.GenerateToken(client)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func flagCommand() *cli.Command {
	return &cli.Command{
		Name:  "flag",
		Usage: "inspect or toggle feature flags",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := flagID(c.Args().Get(0))
					if err != nil {
						return err
					}
					return withFlagStore(c.Context, func(store flags.Store) error {
						on, err := store.IsOn(c.Context, id)
						if err != nil {
							return err
						}
						fmt.Printf("flag %d: %s\n", id, onOff(on))
						return nil
					})
				},
			},
			{
				Name:      "set",
				ArgsUsage: "ID on|off",
				Action: func(c *cli.Context) error {
					id, err := flagID(c.Args().Get(0))
					if err != nil {
						return err
					}
					var on bool
					switch c.Args().Get(1) {
					case "on":
						on = true
					case "off":
					default:
						return cli.Exit("state must be on or off", 2)
					}
					return withFlagStore(c.Context, func(store flags.Store) error {
						if _, ok := store.(*flags.StaticStore); ok {
							return cli.Exit("the static backend is configured through FLAGS_ENABLED", 1)
						}
						if err := store.SetFlag(c.Context, id, on); err != nil {
							return err
						}
						fmt.Printf("flag %d: %s\n", id, onOff(on))
						return nil
					})
				},
			},
		},
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "print details and formats for a link",
		ArgsUsage: "LINK",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "video-id",
				Usage: "treat LINK as a bare video id",
			},
		},
		Action: func(c *cli.Context) error {
			link := c.Args().First()
			if link == "" {
				return cli.Exit("a link is required", 2)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			adapter := platform.NewAdapter(
				ytdlp.New(cfg.Platform.YtdlpPath),
				search.NewResolver(youtube.NewClient(cfg.Search.Timeout), search.NewInvidiousClient(&cfg.Search)),
				flags.NewStaticStore(cfg.Flags.Enabled...),
				worker.Inline{},
				&cfg.Platform,
			)

			videoID := c.Bool("video-id")
			if !adapter.Exists(link, videoID) {
				return cli.Exit("not a YouTube link", 1)
			}

			details := adapter.Details(c.Context, link, videoID)
			formats, normalized := adapter.Formats(c.Context, link, videoID)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"link":    normalized,
				"details": details,
				"formats": formats,
			})
		},
	}
}

func withFlagStore(ctx context.Context, fn func(store flags.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := flags.NewStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()
	return fn(store)
}

func flagID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, cli.Exit(fmt.Sprintf("invalid flag id %q", raw), 2)
	}
	return id, nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
