package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pontovivo/ponto_vivo_app/internal/adapters/cache"
	"github.com/pontovivo/ponto_vivo_app/internal/adapters/geofeed"
	"github.com/pontovivo/ponto_vivo_app/internal/adapters/remote"
	"github.com/pontovivo/ponto_vivo_app/internal/core/docstore"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
	"github.com/pontovivo/ponto_vivo_app/internal/core/shift"
	"github.com/pontovivo/ponto_vivo_app/internal/core/syncengine"
	"github.com/pontovivo/ponto_vivo_app/internal/platform/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// agent bundles the wired punch clock components. The caller must defer
// agent.Close().
type agent struct {
	cfg     *config.Config
	store   *docstore.Store
	engine  *syncengine.Engine
	machine *shift.Machine
	remote  *remote.Client
	logger  *slog.Logger
}

func (a *agent) Close() {
	if a.machine != nil {
		a.machine.Dispose()
	}
	a.engine.Close()
}

// newAgent reads the config and wires the document store, sync engine and,
// when an identity is configured, the shift machine.
func newAgent() (*agent, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.ReadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store := docstore.New(domain.DefaultAppData(), logger)

	localCache, err := cache.NewFileCache(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	client := remote.NewClient(cfg.Server.URL, time.Duration(cfg.Server.TimeoutSeconds)*time.Second)

	debounce := syncengine.DefaultDebounce
	if cfg.Sync.DebounceMS > 0 {
		debounce = time.Duration(cfg.Sync.DebounceMS) * time.Millisecond
	}
	key := cfg.Sync.DocumentKey
	if key == "" {
		key = domain.StateKey
	}

	engine := syncengine.New(syncengine.Config{
		Store:    store,
		Cache:    localCache,
		Remote:   client,
		Online:   client.Online,
		Clock:    ports.RealClock{},
		Logger:   logger,
		Key:      key,
		Debounce: debounce,
	})
	store.SetListener(engine)

	a := &agent{
		cfg:    cfg,
		store:  store,
		engine: engine,
		remote: client,
		logger: logger,
	}

	if cfg.Identity.EmployeeID != "" {
		pollInterval := geofeed.DefaultPollInterval
		if cfg.Geo.PollIntervalMS > 0 {
			pollInterval = time.Duration(cfg.Geo.PollIntervalMS) * time.Millisecond
		}
		source := geofeed.NewSource(cfg.Geo.FeedPath, pollInterval, ports.RealClock{})
		a.machine = shift.NewMachine(store, source, ports.RealClock{}, ports.UUIDGenerator{}, printNotice, logger, cfg.Identity.OrgID, cfg.Identity.EmployeeID)
	}

	return a, nil
}

func printNotice(n shift.Notice) {
	switch n.Tone {
	case shift.ToneError:
		fmt.Printf("[erro] %s\n", n.Message)
	case shift.ToneSuccess:
		fmt.Printf("[ok] %s\n", n.Message)
	default:
		fmt.Println(n.Message)
	}
}

// pullInterval is role-dependent: back office pulls more often than the
// punch clock.
func pullInterval(cfg *config.Config) time.Duration {
	if cfg.Sync.PullSeconds > 0 {
		return time.Duration(cfg.Sync.PullSeconds) * time.Second
	}
	if cfg.Identity.Role == string(domain.RoleAdmin) {
		return 15 * time.Second
	}
	return 30 * time.Second
}

// requireMachine fails when no identity has been configured yet.
func (a *agent) requireMachine() error {
	if a.machine == nil {
		return fmt.Errorf("no identity configured, run 'pva login TOKEN' first")
	}
	if !a.cfg.Identity.CanPunch {
		return fmt.Errorf("conta sem ponto")
	}
	return nil
}

// flush pushes any pending local change before the process exits.
func (a *agent) flush(ctx context.Context) {
	if err := a.engine.ForcePush(ctx); err != nil {
		fmt.Printf("[erro] %s\n", err.Error())
	}
}

var rootCmd = &cobra.Command{
	Use:   "pva",
	Short: "Ponto Vivo punch clock agent",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init SERVER_URL",
	Short: "Initialize configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}

		cfg := config.NewConfig(args[0], filepath.Dir(path))
		if err := config.Init(path, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", path)
		fmt.Printf("Server: %s\n", cfg.Server.URL)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login TOKEN",
	Short: "Exchange an access link token for a worker identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		cfg, err := config.ReadFromFile(path)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		client := remote.NewClient(cfg.Server.URL, time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
		result, err := client.Autologin(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		// The token is single use. Only the resolved identity is kept.
		cfg.Identity = config.IdentityConfig{
			OrgID:      result.OrgID,
			EmployeeID: result.EmployeeID,
			Name:       result.Name,
			Role:       result.Role,
			CanPunch:   result.CanPunch,
		}
		if err := config.WriteToFile(path, cfg); err != nil {
			return fmt.Errorf("saving identity: %w", err)
		}

		fmt.Printf("Bem-vindo, %s\n", result.Name)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the agent: load state, watch the geofence, keep syncing",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.engine.LoadInitial(ctx)
		if a.machine != nil {
			a.machine.Resume()
		}
		a.engine.StartPolling(ctx, pullInterval(a.cfg))

		fmt.Println("Agente em execucao. Ctrl+C para sair.")
		<-ctx.Done()

		a.flush(context.Background())
		return nil
	},
}

var shiftCmd = &cobra.Command{
	Use:   "shift",
	Short: "Manage the current shift",
}

// withShift loads state, runs the shift action and flushes the result.
func withShift(ctx context.Context, action func(*agent)) error {
	a, err := newAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireMachine(); err != nil {
		return err
	}

	a.engine.LoadInitial(ctx)
	a.machine.Resume()
	action(a)
	a.flush(ctx)
	return nil
}

var shiftStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a shift (requires being inside the geofence)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShift(cmd.Context(), func(a *agent) {
			a.machine.Start(cmd.Context())
		})
	},
}

var shiftStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Close the open shift",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShift(cmd.Context(), func(a *agent) {
			a.machine.Stop()
		})
	},
}

var shiftToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Start or close the shift depending on its state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShift(cmd.Context(), func(a *agent) {
			a.machine.Toggle(cmd.Context())
		})
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the latest document from the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return err
		}
		defer a.Close()

		a.engine.LoadInitial(cmd.Context())
		if err := a.engine.Pull(cmd.Context(), syncengine.PullManual); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Println("Sincronizado.")
		return nil
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the local document to the server unconditionally",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return err
		}
		defer a.Close()

		a.engine.LoadInitial(cmd.Context())
		if err := a.engine.ForcePush(cmd.Context()); err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		fmt.Println("Enviado.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show identity, shift and sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return err
		}
		defer a.Close()

		a.engine.LoadInitial(cmd.Context())

		if a.cfg.Identity.EmployeeID == "" {
			fmt.Println("Identidade: nao configurada")
		} else {
			fmt.Printf("Identidade: %s (%s)\n", a.cfg.Identity.Name, a.cfg.Identity.Role)
		}

		if a.machine != nil {
			a.machine.Resume()
			if rec := a.store.OpenPunch(a.cfg.Identity.OrgID, a.cfg.Identity.EmployeeID); rec != nil {
				fmt.Printf("Turno: aberto desde %s\n", humanize.Time(rec.StartAt))
			} else {
				fmt.Println("Turno: fechado")
			}
		}

		state := a.engine.State()
		fmt.Printf("Sync: %s", state.Status)
		if state.LastSyncAt != nil {
			fmt.Printf(" (ultima %s)", humanize.Time(*state.LastSyncAt))
		}
		if state.LastError != "" {
			fmt.Printf(" - %s", state.LastError)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)

	shiftCmd.AddCommand(shiftStartCmd)
	shiftCmd.AddCommand(shiftStopCmd)
	shiftCmd.AddCommand(shiftToggleCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(shiftCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(statusCmd)
}
