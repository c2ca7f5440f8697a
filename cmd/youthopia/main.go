package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mpower/youthopia/internal/college"
	"github.com/mpower/youthopia/internal/config"
	"github.com/mpower/youthopia/internal/database"
	"github.com/mpower/youthopia/internal/logging"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/server"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "youthopia",
		Usage: "Youthopia festival client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file",
				EnvVars: []string{"YOUTHOPIA_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the local API, polling and change notifications",
				Action: serve,
			},
			{
				Name:      "login",
				Usage:     "Sign in and persist the session",
				ArgsUsage: "<email-or-mobile> <password>",
				Action:    login,
			},
			{
				Name:   "logout",
				Usage:  "Clear the persisted session",
				Action: logout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the persisted session",
				Action: whoami,
			},
			{
				Name:   "passcodes",
				Usage:  "Print every event's master control passcode",
				Action: passcodes,
			},
			{
				Name:  "colleges",
				Usage: "Print the student distribution by college",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "event", Usage: "only students registered for this event id"},
					&cli.StringFlag{Name: "q", Usage: "filter colleges by name"},
				},
				Action: colleges,
			},
		},
	}
}

// env is what every command needs: configuration, a logger and the wired
// server with its restored session.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	srv    *server.Server
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	srv, err := server.New(db, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db, srv: srv}, nil
}

// authorize mirrors the role checks of the HTTP routes serving the same
// data.
func authorize(u *model.User, roles ...string) error {
	if u == nil {
		return cli.Exit("not signed in", 1)
	}
	if !slices.Contains(roles, u.Role) {
		return cli.Exit(fmt.Sprintf("signed in as %s; requires role %s", u.Role, strings.Join(roles, " or ")), 1)
	}
	return nil
}

func serve(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.db.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := e.srv.Poller()
	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         e.cfg.Server.Addr,
		Handler:      e.srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // bulk bonus grants run serially
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("youthopia running", "addr", e.cfg.Server.Addr, "api", e.cfg.API.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	e.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func login(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: youthopia login <email-or-mobile> <password>", 2)
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.db.Close()

	u, err := e.srv.Mirror().Login(c.Context, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s), %d points, %d spins\n", u.Name, u.Role, u.Points, u.SpinsAvailable)
	return nil
}

func logout(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.db.Close()
	return e.srv.Mirror().Logout()
}

func whoami(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.db.Close()

	u := e.srv.Mirror().Session()
	if u == nil {
		return cli.Exit("not signed in", 1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(u)
}

func passcodes(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.db.Close()

	m := e.srv.Mirror()
	if err := authorize(m.Session(), model.RoleExecutive); err != nil {
		return err
	}
	if err := m.Refresh(c.Context); err != nil {
		return err
	}
	for _, code := range e.srv.Console().Passcodes(m.Snapshot().Events) {
		fmt.Printf("%s: %s\n", code.Title, code.Code)
	}
	return nil
}

func colleges(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.db.Close()

	m := e.srv.Mirror()
	if err := authorize(m.Session(), model.RoleAdmin, model.RoleExecutive); err != nil {
		return err
	}
	if err := m.Refresh(c.Context); err != nil {
		return err
	}
	groups := college.DistributionRules.Distribute(m.Snapshot().Users, college.Options{
		EventID: c.String("event"),
		Search:  c.String("q"),
	})

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tCOLLEGE")
	for _, g := range groups {
		fmt.Fprintf(tw, "%d\t%s\n", g.Count, g.Name)
	}
	return tw.Flush()
}
