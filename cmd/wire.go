package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/itsmostafa/prayog/internal/config"
	"github.com/itsmostafa/prayog/internal/engine"
	"github.com/itsmostafa/prayog/internal/jsengine"
	"github.com/itsmostafa/prayog/internal/render"
	"github.com/itsmostafa/prayog/internal/session"
	"github.com/itsmostafa/prayog/internal/tengoengine"
	"github.com/itsmostafa/prayog/internal/value"
)

// app is everything a command needs to run units.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	engine    engine.Engine
	store     *session.Store
	coord     *session.Coordinator
	presenter *render.Formatter
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	config.KeyEngine:      "engine",
	config.KeyPrompt:      "prompt",
	config.KeyHistoryFile: "history-file",
	config.KeyLogLevel:    "log-level",
}

func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	v := viper.New()
	for key, name := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return config.Config{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	if opts.noColor {
		v.Set(config.KeyColor, false)
	}
	return config.Load(v, opts.configFile)
}

func newApp(cmd *cobra.Command, opts *rootOptions, out io.Writer) (*app, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With(slog.String("session", uuid.NewString()))

	eng, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(cfg.Policy().WithInternal(eng.Reserved()...))
	if err := seedStore(store, opts); err != nil {
		return nil, err
	}
	logger.Debug("session ready",
		slog.String("engine", eng.Name()),
		slog.Int("bindings", store.Len()))

	return &app{
		cfg:       cfg,
		logger:    logger,
		engine:    eng,
		store:     store,
		coord:     session.NewCoordinator(eng, store, out, logger),
		presenter: render.New(out, cfg.Color),
	}, nil
}

func newEngine(cfg config.Config) (engine.Engine, error) {
	switch cfg.Engine {
	case "js":
		jc := jsengine.DefaultConfig()
		jc.Timeout = cfg.TimeoutDuration()
		if cfg.WorkDir != "" {
			jc.FS.WorkDir = cfg.WorkDir
		}
		return jsengine.New(jc), nil
	case "tengo":
		tc := tengoengine.DefaultConfig()
		tc.Timeout = cfg.TimeoutDuration()
		return tengoengine.New(tc), nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownEngine, cfg.Engine)
	}
}

// seedStore applies --vars and then --set, so single values win.
func seedStore(store *session.Store, opts *rootOptions) error {
	if opts.varsFile != "" {
		vars, err := readVarsFile(opts.varsFile)
		if err != nil {
			return err
		}
		store.Merge(vars)
	}
	for _, assignment := range opts.sets {
		name, v, err := parseSet(assignment)
		if err != nil {
			return err
		}
		store.Set(name, v)
	}
	return nil
}

// parseSet splits name=json. A value that is not valid JSON is taken as a
// plain string.
func parseSet(assignment string) (string, value.Value, error) {
	name, raw, ok := strings.Cut(assignment, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid --set %q: want name=value", assignment)
	}
	v, err := value.ParseJSON(raw)
	if err != nil {
		return name, value.String(raw), nil
	}
	return name, v, nil
}

func readVarsFile(path string) (value.Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vars file: %w", err)
	}
	v, err := value.ParseJSON(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse vars file %s: %w", path, err)
	}
	m, ok := v.(*value.Map)
	if !ok {
		return nil, fmt.Errorf("vars file %s: want a JSON object, got %s", path, value.TypeName(v))
	}
	vars := make(value.Bindings, m.Len())
	for _, k := range m.Keys {
		vars[k] = m.Values[k]
	}
	return vars, nil
}
