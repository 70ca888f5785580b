// Package nbstage turns an interactive notebook session into a
// reproducible, cacheable pipeline stage. It drives the backend pipeline
// store's run-session protocol (open, execute, verify, finalize) and
// instruments live interpreters to discover the files a stage reads and
// writes.
//
// The root package is a thin assembly layer: hosts that need finer control
// wire pkg/runner, pkg/trace, and the adapters directly.
package nbstage

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/calkit/nbstage/internal/config"
	"github.com/calkit/nbstage/internal/logging"
	"github.com/calkit/nbstage/pkg/adapters/jupyter"
	"github.com/calkit/nbstage/pkg/adapters/memory"
	redisadapter "github.com/calkit/nbstage/pkg/adapters/redis"
	"github.com/calkit/nbstage/pkg/adapters/rest"
	"github.com/calkit/nbstage/pkg/kernel"
	"github.com/calkit/nbstage/pkg/ports"
	"github.com/calkit/nbstage/pkg/runner"
	"github.com/calkit/nbstage/pkg/runstate"
)

// Version of the client, for hosts that want to display it.
const Version = "0.3.0"

// Client bundles an assembled controller with the collaborators hosts need
// a handle on.
type Client struct {
	Controller *runner.Controller
	States     *runstate.Broadcaster
	Store      *rest.Client
	Jupyter    *jupyter.Client
	Logger     *slog.Logger
}

// Option configures the assembly.
type Option func(*assembly)

type assembly struct {
	logger     *slog.Logger
	presenter  ports.ErrorPresenter
	refresher  ports.Refresher
	registerer prometheus.Registerer
	root       string
}

// WithLogger overrides the config-derived logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *assembly) {
		a.logger = logger
	}
}

// WithPresenter wires the host's user-visible error surface.
func WithPresenter(p ports.ErrorPresenter) Option {
	return func(a *assembly) {
		a.presenter = p
	}
}

// WithRefresher wires the host's post-finalize cache invalidation.
func WithRefresher(r ports.Refresher) Option {
	return func(a *assembly) {
		a.refresher = r
	}
}

// WithRegisterer registers the controller metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(a *assembly) {
		a.registerer = reg
	}
}

// WithProjectRoot sets the absolute project root for client-side filtering
// of detected paths.
func WithProjectRoot(root string) Option {
	return func(a *assembly) {
		a.root = root
	}
}

// New assembles a Client from the config file at configPath (optional) plus
// environment overrides.
func New(configPath string, opts ...Option) (*Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	var a assembly
	for _, opt := range opts {
		opt(&a)
	}
	if a.logger == nil {
		a.logger = logging.New(logging.ParseLevel(cfg.LogLevel))
	}

	store := rest.NewClient(cfg.Server,
		rest.WithToken(cfg.Token),
		rest.WithLogger(a.logger),
	)
	jup := jupyter.NewClient(cfg.Jupyter.Server,
		jupyter.WithToken(cfg.Jupyter.Token),
		jupyter.WithLogger(a.logger),
	)

	var locker ports.RunLocker = memory.NewLocker()
	if cfg.Redis.URL != "" {
		redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		locker = redisadapter.NewLocker(goredis.NewClient(redisOpts), "nbstage:", cfg.Redis.LockTTL.Std())
	}

	states := runstate.NewBroadcaster()
	ctrlOpts := []runner.Option{
		runner.WithLogger(a.logger),
		runner.WithKernelManager(kernel.NewManager(
			kernel.WithIdleTimeout(cfg.KernelIdleTimeout.Std()),
			kernel.WithLogger(a.logger),
		)),
		runner.WithMetrics(runner.NewMetrics(a.registerer)),
	}
	if a.presenter != nil {
		ctrlOpts = append(ctrlOpts, runner.WithPresenter(a.presenter))
	}
	if a.refresher != nil {
		ctrlOpts = append(ctrlOpts, runner.WithRefresher(a.refresher))
	}
	if a.root != "" {
		ctrlOpts = append(ctrlOpts, runner.WithProjectRoot(a.root))
	}

	return &Client{
		Controller: runner.New(store, locker, states, ctrlOpts...),
		States:     states,
		Store:      store,
		Jupyter:    jup,
		Logger:     a.logger,
	}, nil
}
