// Command ops runs one-off maintenance tasks against the production
// database: decay sweeps, referral exports, score charts and API tokens.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"

	"github.com/escrowhub/api/app"
	authdomain "github.com/escrowhub/api/app/modules/auth/domain"
	authjwt "github.com/escrowhub/api/app/modules/auth/infrastructure/jwt"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	"github.com/escrowhub/api/app/modules/referral"
	"github.com/escrowhub/api/app/modules/trustscore"
	trustscorecache "github.com/escrowhub/api/app/modules/trustscore/infrastructure/cache"
	"github.com/escrowhub/api/config"
	"github.com/escrowhub/api/pkg/eventbus"
	"github.com/escrowhub/api/pkg/observability"
	"github.com/escrowhub/api/pkg/timeparse"
)

func main() {
	cliApp := &cli.App{
		Name:  "ops",
		Usage: "maintenance tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			decayCommand(),
			referralsCommand(),
			trustCommand(),
			tokenCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// env is the slice of the application a single command needs.
type env struct {
	cfg *config.Config
	obs observability.Observability
	db  *bun.DB
	bus eventbus.EventBus
}

func (e *env) Close() {
	if e.bus != nil {
		_ = e.bus.Close()
	}
	if e.db != nil {
		_ = e.db.Close()
	}
}

func loadEnv(c *cli.Context, withDB, withBus bool) (*env, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	obs, err := observability.New(observability.Config{
		ServiceName: cfg.Observability.ServiceName + "-ops",
		Environment: cfg.Observability.Environment,
		LogLevel:    cfg.Observability.LogLevel,
		Output:      os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, obs: obs}
	if withDB {
		e.db = app.NewDB(cfg.Postgres.DSN)
		if err := e.db.PingContext(c.Context); err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}
	if withBus {
		e.bus, err = eventbus.NewNATSEventBus(c.Context, cfg.NATS.URL, eventbus.DefaultStreams, obs.Logger)
		if err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

func (e *env) trustScoreModule(ctx context.Context) (*trustscore.Module, error) {
	return trustscore.NewModule(ctx, e.cfg, e.obs, trustscore.Deps{
		DB:    e.db,
		Bus:   e.bus,
		Stats: marketplacedb.NewRepository(e.db),
		Cache: trustscorecache.NewNoopCache(),
	})
}

func decayCommand() *cli.Command {
	return &cli.Command{
		Name:  "decay",
		Usage: "trust score decay",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "apply decay to every inactive scored user now",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "publish", Value: true, Usage: "publish decay events to NATS"},
				},
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c, true, c.Bool("publish"))
					if err != nil {
						return err
					}
					defer e.Close()

					module, err := e.trustScoreModule(c.Context)
					if err != nil {
						return err
					}
					summary, err := module.GetService().ApplyDecayToInactive(c.Context, time.Now().UTC())
					if err != nil {
						return err
					}
					fmt.Printf("scanned=%d decayed=%d failed=%d\n", summary.Scanned, summary.Decayed, summary.Failed)
					return nil
				},
			},
		},
	}
}

func referralsCommand() *cli.Command {
	return &cli.Command{
		Name:  "referrals",
		Usage: "referral reporting",
		Subcommands: []*cli.Command{
			{
				Name:  "export",
				Usage: "write the referral report as XLSX",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "since", Value: "30 days ago", Usage: `start of the report, e.g. "2026-01-01" or "last monday"`},
					&cli.StringFlag{Name: "out", Value: "referrals.xlsx", Usage: "output file"},
				},
				Action: func(c *cli.Context) error {
					since, err := timeparse.New().ParseSince(c.String("since"), time.Now().UTC())
					if err != nil {
						return err
					}

					e, err := loadEnv(c, true, false)
					if err != nil {
						return err
					}
					defer e.Close()

					module, err := referral.NewModule(c.Context, e.cfg, e.obs, referral.Deps{
						DB:    e.db,
						Stats: marketplacedb.NewRepository(e.db),
					})
					if err != nil {
						return err
					}
					body, err := module.GetService().ExportReport(c.Context, since)
					if err != nil {
						return err
					}
					if err := os.WriteFile(c.String("out"), body, 0o644); err != nil {
						return fmt.Errorf("failed to write report: %w", err)
					}
					fmt.Printf("wrote %s (since %s)\n", c.String("out"), since.Format(time.RFC3339))
					return nil
				},
			},
		},
	}
}

func trustCommand() *cli.Command {
	return &cli.Command{
		Name:  "trust",
		Usage: "trust score tools",
		Subcommands: []*cli.Command{
			{
				Name:  "chart",
				Usage: "render a user's score history as PNG",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true},
					&cli.StringFlag{Name: "out", Value: "trust-score.png"},
				},
				Action: func(c *cli.Context) error {
					userID, err := uuid.Parse(c.String("user"))
					if err != nil {
						return fmt.Errorf("invalid user id: %w", err)
					}

					e, err := loadEnv(c, true, false)
					if err != nil {
						return err
					}
					defer e.Close()

					module, err := e.trustScoreModule(c.Context)
					if err != nil {
						return err
					}
					png, err := module.GetService().RenderHistoryChart(c.Context, userID)
					if err != nil {
						return err
					}
					return os.WriteFile(c.String("out"), png, 0o644)
				},
			},
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an API bearer token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true},
			&cli.StringFlag{Name: "role", Value: string(authdomain.RoleUser)},
			&cli.DurationFlag{Name: "ttl", Value: time.Hour},
		},
		Action: func(c *cli.Context) error {
			userID, err := uuid.Parse(c.String("user"))
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			role := authdomain.Role(c.String("role"))
			if !role.IsValid() {
				return fmt.Errorf("invalid role: %s", role)
			}

			e, err := loadEnv(c, false, false)
			if err != nil {
				return err
			}
			defer e.Close()

			token, err := authjwt.NewProvider(e.cfg.JWT.Secret, e.cfg.JWT.Issuer).
				GenerateToken(&authdomain.Claims{UserID: userID, Role: role}, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
