package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/facet/application/planner"
	"github.com/reglet-dev/facet/application/source"
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
	"github.com/reglet-dev/facet/engine"
	"github.com/reglet-dev/facet/infrastructure/metrics"
	"github.com/reglet-dev/facet/infrastructure/prompter"
	"github.com/reglet-dev/facet/infrastructure/store"
	"github.com/reglet-dev/facet/infrastructure/wazero"
	facetlog "github.com/reglet-dev/facet/log"
	"github.com/reglet-dev/facet/registry"
)

// app carries state shared by every command of one invocation.
type app struct {
	configPath string
	statePath  string
	sets       []string

	cfg       config
	log       *slog.Logger
	recorder  ports.MetricsRecorder
	prom      *metrics.Recorder
	stateFile *store.FileStore
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "facetctl",
		Short:         "Reconcile a capability registry against a manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.prom == nil {
				return nil
			}
			return a.prom.WriteTextfile(a.cfg.MetricsTextfile)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a facetctl TOML config file")
	root.PersistentFlags().StringVar(&a.statePath, "state", "", "registry state file (overrides state_path)")
	root.PersistentFlags().StringArrayVar(&a.sets, "set", nil, "manifest template variable as key=value (repeatable)")

	root.AddCommand(
		newPlanCmd(a),
		newApplyCmd(a),
		newShowCmd(a),
		newSchemaCmd(a),
		newRouteCmd(a),
		newInspectCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.statePath != "" {
		cfg.StatePath = a.statePath
	}
	a.cfg = cfg

	level, err := facetlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := facetlog.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	a.log = facetlog.New(
		facetlog.WithLevel(level),
		facetlog.WithFormat(format),
		facetlog.WithWriter(cmd.ErrOrStderr()),
	)

	a.recorder = ports.NopRecorder{}
	if cfg.MetricsTextfile != "" {
		a.prom = metrics.NewRecorder()
		a.recorder = a.prom
	}
	a.stateFile = store.NewFileStore(store.WithPath(cfg.StatePath))
	return nil
}

// openRegistry seeds a registry from the state file.
func (a *app) openRegistry(self string) (*registry.Registry, error) {
	entries, err := a.stateFile.Load()
	if err != nil {
		return nil, err
	}
	opts := []registry.Option{
		registry.WithSeed(entries),
		registry.WithLogger(a.log),
		registry.WithRecorder(a.recorder),
	}
	if self != "" {
		opts = append(opts, registry.WithSelf(entities.ModuleID(self)))
	}
	reg, err := registry.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("restoring registry from %s: %w", a.stateFile.Path(), err)
	}
	return reg, nil
}

func (a *app) loadManifest(path string) (*entities.Manifest, error) {
	vars, err := parseVars(a.sets)
	if err != nil {
		return nil, err
	}
	loader, err := engine.NewLoader()
	if err != nil {
		return nil, err
	}
	return loader.LoadFile(path, vars)
}

func (a *app) assessor() *entities.RiskAssessor {
	return entities.NewRiskAssessor(
		entities.WithBroadThreshold(a.cfg.BroadThreshold),
		entities.WithCriticalModules(a.cfg.CriticalModules...),
	)
}

// newEngine builds an engine for the manifest at path, resolving wasm
// modules relative to it unless wasm_dir is set.
func (a *app) newEngine(cmd *cobra.Command, manifestPath string, m *entities.Manifest, autoApprove bool) (*engine.Engine, error) {
	reg, err := a.openRegistry(m.Self)
	if err != nil {
		return nil, err
	}

	wasmDir := a.cfg.WasmDir
	if wasmDir == "" {
		wasmDir = filepath.Dir(manifestPath)
	}

	return engine.New(reg,
		engine.WithLogger(a.log),
		engine.WithSource(source.NewMultiSource(
			wazero.NewExportSource(wazero.WithBaseDir(wasmDir), wazero.WithLogger(a.log)),
		)),
		engine.WithPlanner(planner.New(
			planner.WithLogger(a.log),
			planner.WithRecorder(a.recorder),
		)),
		engine.WithPrompter(prompter.NewCliPrompter(cmd.InOrStdin(), cmd.OutOrStdout(),
			entities.WithBroadThreshold(a.cfg.BroadThreshold),
			entities.WithCriticalModules(a.cfg.CriticalModules...),
		)),
		engine.WithStore(a.stateFile),
		engine.WithAutoApprove(autoApprove || a.cfg.AssumeYes),
	), nil
}
