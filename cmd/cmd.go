package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/hush/internal/configs"
	herrors "github.com/PolarWolf314/hush/internal/errors"
	logger "github.com/PolarWolf314/hush/internal/logging"
	"github.com/PolarWolf314/hush/internal/ui"
	"github.com/PolarWolf314/hush/internal/workflows"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose    bool
	debug      bool
	configPath string
	actingAs   string
	Logger     logger.Logger
)

// addCommonFlags registers the flags every command group accepts.
func addCommonFlags(c *cobra.Command) {
	c.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	c.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	c.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file (default "+configs.HushSettings.ConfigPath+")")
}

// addActorFlag registers --as on a command group whose commands act on
// behalf of a principal.
func addActorFlag(c *cobra.Command) {
	c.PersistentFlags().StringVar(&actingAs, "as", "", "principal to act as (id or username)")
}

func setupLogger(cmd *cobra.Command, args []string) {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
}

// resolvedConfigPath returns --config or the default config location.
func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return configs.HushSettings.ConfigPath
}

func loadConfig() (*configs.Config, error) {
	path := resolvedConfigPath()
	Logger.Debugf("Loading config from %s", path)
	config, err := configs.Load(path)
	if err != nil {
		return nil, err
	}
	if len(config.Unknown) > 0 {
		Logger.Warnf("Ignoring unrecognised config keys: %v", config.Unknown)
	}
	return config, nil
}

// openEnv loads the config and opens the database and crypto services.
// The caller must Close the returned Env.
func openEnv(ctx context.Context) (*workflows.Env, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return workflows.Open(ctx, config, Logger)
}

// requireActor returns the --as value, or an error naming the flag.
func requireActor() (string, error) {
	if actingAs == "" {
		return "", fmt.Errorf("%w: %s is required", herrors.ErrInvalidInput, ui.Flag.Sprint("--as"))
	}
	return actingAs, nil
}

// failureMessage renders err for a spinner's final message, with a hint for
// the errors a user can act on.
func failureMessage(action string, err error) string {
	msg := ui.Fail() + " " + action + "\n\n" + ui.Error.Sprint("Error: ") + err.Error()

	var hint string
	switch {
	case errors.Is(err, herrors.ErrMissingSecret), errors.Is(err, herrors.ErrSecretsNotDistinct):
		hint = "Run " + ui.Code.Sprint("hush config init") + " or set " + ui.Code.Sprint(configs.EnvMasterKey) + " and " + ui.Code.Sprint(configs.EnvFieldKey)
	case errors.Is(err, herrors.ErrInvalidConfig):
		hint = "Check " + ui.Path.Sprint(resolvedConfigPath()) + " or run " + ui.Code.Sprint("hush doctor")
	case errors.Is(err, herrors.ErrPrincipalNotFound):
		hint = "Run " + ui.Code.Sprint("hush users list") + " to see registered users"
	case errors.Is(err, herrors.ErrPrincipalExists):
		hint = "Choose a different username"
	case errors.Is(err, herrors.ErrMissingKey):
		hint = "Run " + ui.Code.Sprint("hush keys backfill") + " to generate missing keys"
	case errors.Is(err, herrors.ErrConcurrentRotation):
		hint = "The keys were rotated by another process; check " + ui.Code.Sprint("hush keys info") + " and retry"
	case errors.Is(err, herrors.ErrEncryption):
		hint = "Messages over the RSA limit need the " + ui.Highlight.Sprint(configs.SchemeHybrid) + " scheme"
	case errors.Is(err, herrors.ErrUnwrap), errors.Is(err, herrors.ErrDecryption):
		hint = "Check that the master key is the one the keys were created with"
	}
	if hint != "" {
		msg += "\n" + ui.Hint() + " " + hint
	}
	return msg
}

// ResetGlobalState resets all global flag variables to their defaults for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configPath = ""
	actingAs = ""
	resetConfigCommandState()
	resetUsersCommandState()
	resetKeysCommandState()
	resetMessagesCommandState()
	resetDoctorCommandState()
	resetLogCommandState()

	for _, group := range Commands() {
		resetCobraFlagState(group)
	}
}

// resetCobraFlagState clears Changed on every flag in the command tree to
// prevent test pollution.
func resetCobraFlagState(c *cobra.Command) {
	reset := func(flag *pflag.Flag) { flag.Changed = false }
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}

// Commands returns every top-level command in the order they are listed.
func Commands() []*cobra.Command {
	return []*cobra.Command{ConfigCmd, UsersCmd, KeysCmd, MessagesCmd, DoctorCmd, LogCmd}
}
