package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/facet/application/schema"
	"github.com/reglet-dev/facet/dispatch"
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/infrastructure/prompter"
	"github.com/reglet-dev/facet/infrastructure/wazero"
)

func newPlanCmd(a *app) *cobra.Command {
	var file, kind string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the cuts that would reconcile the registry with a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.loadManifest(file)
			if err != nil {
				return err
			}
			eng, err := a.newEngine(cmd, file, m, false)
			if err != nil {
				return err
			}

			if kind != "" {
				k := entities.Kind(kind)
				if !k.Valid() {
					return fmt.Errorf("unknown kind %q (want additions, replacements or removals)", kind)
				}
				cuts, err := eng.PlanKind(cmd.Context(), m, k)
				if err != nil {
					return err
				}
				for _, c := range cuts {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			}

			plan, err := eng.Plan(cmd.Context(), m)
			if err != nil {
				return err
			}
			prompter.WritePlan(cmd.OutOrStdout(), plan, a.assessor())
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "facet.yaml", "manifest file")
	cmd.Flags().StringVar(&kind, "kind", "", "run a single diff kind strictly")
	return cmd
}

func newApplyCmd(a *app) *cobra.Command {
	var (
		file string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile the registry with a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.loadManifest(file)
			if err != nil {
				return err
			}
			eng, err := a.newEngine(cmd, file, m, yes)
			if err != nil {
				return err
			}

			plan, err := eng.Plan(cmd.Context(), m)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if yes || a.cfg.AssumeYes || plan.IsEmpty() {
				prompter.WritePlan(out, plan, a.assessor())
			}

			applied, err := eng.Apply(cmd.Context(), plan)
			if err != nil {
				return err
			}
			switch {
			case applied:
				_, _ = fmt.Fprintf(out, "Applied. State saved to %s\n", a.stateFile.Path())
			case !plan.IsEmpty():
				_, _ = fmt.Fprintln(out, "Apply cancelled.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "facet.yaml", "manifest file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply without asking for confirmation")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.openRegistry("")
			if err != nil {
				return err
			}
			return writeEntries(cmd.OutOrStdout(), reg.Modules(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func writeEntries(w io.Writer, entries []entities.ModuleEntry, format string) error {
	if entries == nil {
		entries = []entities.ModuleEntry{}
	}
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		if len(entries) == 0 {
			_, _ = fmt.Fprintln(w, "Registry is empty.")
			return nil
		}
		for _, e := range entries {
			_, _ = fmt.Fprintf(w, "%s (%d)\n", e.ID, len(e.Capabilities))
			for _, c := range e.Capabilities {
				_, _ = fmt.Fprintf(w, "    %s\n", c)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func newSchemaCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the manifest JSON schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := schema.ManifestSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newRouteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "route <capability>",
		Short: "Print the module a capability currently routes to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := entities.ParseCapabilityID(args[0])
			if err != nil {
				return err
			}
			reg, err := a.openRegistry("")
			if err != nil {
				return err
			}
			router, err := dispatch.NewRouter(reg)
			if err != nil {
				return err
			}
			owner, err := router.Route(c)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), owner)
			return nil
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	var include, exclude []string

	cmd := &cobra.Command{
		Use:   "inspect <module.wasm>",
		Short: "List the capabilities a wasm module exports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			src := wazero.NewExportSource(wazero.WithLogger(a.log))
			exports, err := src.Exports(cmd.Context(), bin, &entities.ExportSelector{Include: include, Exclude: exclude})
			if err != nil {
				return err
			}
			for _, e := range exports {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Capability, e.Signature)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "export name globs to include")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "export name globs to exclude")
	return cmd
}
