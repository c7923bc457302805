package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/Deep145757/teams-ai/internal/catalog"
	"github.com/Deep145757/teams-ai/internal/declare"
	"github.com/Deep145757/teams-ai/internal/loader"
	"github.com/Deep145757/teams-ai/internal/logging"
	"github.com/Deep145757/teams-ai/internal/selection"
	"github.com/Deep145757/teams-ai/internal/validation"
	"github.com/Deep145757/teams-ai/pkg/models"
	"github.com/spf13/cobra"
)

const (
	formatFunction = "function"
	formatMCP      = "mcp"
	formatActions  = "actions"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	cfg    Config
	logger *slog.Logger
	ctx    context.Context
}

func newRootCmd(cfg Config) *cobra.Command {
	a := &app{cfg: cfg, logger: slog.Default(), ctx: context.Background()}

	root := &cobra.Command{
		Use:          "actions",
		Short:        "Inspect and render LLM action manifests",
		Long:         "actions loads the action lists offered to a model (actions.json / actions.yaml) and lints or converts them.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logging.ParseLevel(a.cfg.LogLevel)})
			a.logger = slog.New(logging.NewCorrelationHandler(handler))
			a.ctx = logging.WithRunID(cmd.Context(), logging.NewRunID())
		},
	}

	root.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	root.AddCommand(a.lintCmd())
	root.AddCommand(a.renderCmd())
	root.AddCommand(a.listCmd())
	root.AddCommand(a.promptsCmd())
	return root
}

func (a *app) lintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint FILE...",
		Short: "Check manifests for duplicate names and malformed parameter schemas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			checker := validation.NewSchemaChecker()
			reg := catalog.NewRegistry()
			total := &validation.Result{}

			for _, path := range args {
				actions, err := loader.LoadFile(path)
				if err != nil {
					res := &validation.Result{}
					res.AddError("", "", models.CodeOf(err), models.MessageOf(err))
					printIssues(out, path, res)
					total.Merge(res)
					continue
				}

				res := checker.CheckAll(actions, a.cfg.Strict)

				// Duplicates inside a file are reported by CheckAll; the
				// registry catches names already defined by an earlier file.
				local := make(map[string]struct{}, len(actions))
				for i, act := range actions {
					if act.Name == "" {
						continue
					}
					if _, dup := local[act.Name]; dup {
						continue
					}
					local[act.Name] = struct{}{}
					if err := reg.Register(act); err != nil {
						res.AddError(fmt.Sprintf("actions[%d].name", i), act.Name, models.CodeOf(err),
							fmt.Sprintf("action %q already defined in an earlier manifest", act.Name))
					}
				}

				a.logger.DebugContext(a.ctx, "linted manifest", "path", path, "actions", len(actions),
					"errors", len(res.Errors), "warnings", len(res.Warnings))
				printIssues(out, path, res)
				total.Merge(res)
			}

			fmt.Fprintf(out, "%d action(s), %d error(s), %d warning(s)\n", reg.Count(), len(total.Errors), len(total.Warnings))
			return total.ToError()
		},
	}
	cmd.Flags().BoolVar(&a.cfg.Strict, "strict", a.cfg.Strict, "treat empty action names as errors")
	return cmd
}

func (a *app) renderCmd() *cobra.Command {
	var where string
	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Print the actions as provider tool declarations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, _, err := a.loadFiles(args)
			if err != nil {
				return err
			}

			if where != "" {
				filter, err := selection.Compile(where)
				if err != nil {
					return err
				}
				if actions, err = filter.Apply(actions); err != nil {
					return err
				}
				a.logger.DebugContext(a.ctx, "filtered actions", "where", filter.String(), "kept", len(actions))
			}

			var payload any
			switch a.cfg.Format {
			case formatFunction:
				payload = declare.Functions(actions)
			case formatMCP:
				tools, err := declare.MCPTools(actions)
				if err != nil {
					return err
				}
				payload = tools
			case formatActions:
				payload = actions
			default:
				return models.NewErrorf(models.ErrCodeValidation, "unknown format %q (want function, mcp or actions)", a.cfg.Format)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}
	cmd.Flags().StringVarP(&a.cfg.Format, "format", "f", a.cfg.Format, "output format: function, mcp, actions")
	cmd.Flags().StringVarP(&where, "where", "w", "", `filter expression, e.g. 'name startsWith "get_"'`)
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list FILE...",
		Short: "List action names and descriptions, sorted by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := a.loadFiles(args)
			if err != nil {
				return err
			}
			for _, act := range reg.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", act.Name, act.Description)
			}
			return nil
		},
	}
}

func (a *app) promptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompts DIR",
		Short: "List the actions declared by each prompt in a prompts folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts, err := loader.LoadPromptFolder(args[0], logging.LogWith(a.ctx, a.logger))
			if err != nil {
				return err
			}

			names := make([]string, 0, len(prompts))
			for name := range prompts {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				logging.LogWith(logging.WithPrompt(a.ctx, name), a.logger).
					Debug("prompt actions", "count", len(prompts[name]))
				for _, act := range prompts[name] {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", name, act.Name, act.Description)
				}
			}
			return nil
		},
	}
}

// loadFiles reads every manifest in order and registers its actions,
// failing on the first unreadable file or duplicate name.
func (a *app) loadFiles(paths []string) ([]models.ChatCompletionAction, *catalog.Registry, error) {
	reg := catalog.NewRegistry()
	all := make([]models.ChatCompletionAction, 0)
	log := logging.LogWith(a.ctx, a.logger)

	for _, path := range paths {
		actions, err := loader.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		for _, act := range actions {
			if err := reg.Register(act); err != nil {
				log.Error("cannot register action", "action", act.Name, "path", path, "err", err)
				return nil, nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		log.Debug("loaded manifest", "path", path, "count", len(actions))
		all = append(all, actions...)
	}
	return all, reg, nil
}

func printIssues(w io.Writer, path string, res *validation.Result) {
	for _, issue := range res.Errors {
		printIssue(w, path, issue)
	}
	for _, issue := range res.Warnings {
		printIssue(w, path, issue)
	}
}

func printIssue(w io.Writer, path string, issue validation.Issue) {
	loc := path
	if issue.Path != "" {
		loc = path + ": " + issue.Path
	}
	fmt.Fprintf(w, "%s: %s: [%s] %s\n", loc, issue.Severity, issue.Code, issue.Message)
}
