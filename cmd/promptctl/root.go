package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"promptkit/core"
	"promptkit/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Store      string
	Format     string // "json" | "text"
	Verbose    bool

	errOut io.Writer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for promptctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "promptctl",
		Short: "Drive a prompt decision engine from the command line",
		Long: `promptctl plays the host application: each invocation opens the configured
store, reports one lifecycle event or asks one decision, and closes the store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.errOut = cmd.ErrOrStderr()
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.json, .yaml or .yml)")
	cmd.PersistentFlags().StringVarP(&opts.Store, "store", "s", "", "store descriptor, overrides config (e.g. file:./prompts.json, sqlite:./prompts.db, redis://localhost:6379/0)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newEventCommand(opts, "first-run", "Record that the app completed its first run", (*engine.Core).HandleFirstRun))
	cmd.AddCommand(newEventCommand(opts, "startup", "Record an app launch", (*engine.Core).HandleStartup))
	cmd.AddCommand(newSeenCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newStateCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withApp builds the app, runs fn, destroys the core and flushes metrics.
func withApp(opts *RootOptions, fn func(*App) error) error {
	app, cleanup, err := BuildApp(opts)
	if err != nil {
		return err
	}
	runErr := fn(app)
	cleanup()
	if err := app.FlushMetrics(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

type stateOutput struct {
	Instance string     `json:"instance"`
	State    core.State `json:"state"`
}

func newEventCommand(opts *RootOptions, use, short string, handle func(*engine.Core)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *App) error {
				handle(app.Core)
				return writeState(cmd.OutOrStdout(), opts.Format, app.Core)
			})
		},
	}
}

func newSeenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "seen <push|in-app>",
		Short:     "Record that a prompt was shown",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"push", "in-app"},
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := core.ParsePrompt(args[0])
			if err != nil {
				return err
			}
			return withApp(opts, func(app *App) error {
				if prompt == core.PromptPush {
					app.Core.HandlePushSeen()
				} else {
					app.Core.HandleInAppSeen()
				}
				return writeState(cmd.OutOrStdout(), opts.Format, app.Core)
			})
		},
	}
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "show <push|in-app>",
		Short:     "Print whether a prompt should be shown now",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"push", "in-app"},
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := core.ParsePrompt(args[0])
			if err != nil {
				return err
			}
			return withApp(opts, func(app *App) error {
				show := app.Core.ShowInApp()
				if prompt == core.PromptPush {
					show = app.Core.ShowPush()
				}
				out := cmd.OutOrStdout()
				if opts.Format == "json" {
					return json.NewEncoder(out).Encode(map[string]any{"prompt": prompt, "show": show})
				}
				_, err := fmt.Fprintln(out, show)
				return err
			})
		},
	}
}

func newStateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the persisted counters and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *App) error {
				return writeState(cmd.OutOrStdout(), opts.Format, app.Core)
			})
		},
	}
}

func writeState(w io.Writer, format string, c *engine.Core) error {
	st := c.State()
	if format == "json" {
		return json.NewEncoder(w).Encode(stateOutput{Instance: c.ID(), State: st})
	}
	_, err := fmt.Fprintf(w, "first_run_done=%t startups=%d push_seen=%t in_app_seen=%t show_push=%t show_in_app=%t\n",
		st.FirstRunDone, st.Startups, st.PushSeen, st.InAppSeen, c.ShowPush(), c.ShowInApp())
	return err
}
