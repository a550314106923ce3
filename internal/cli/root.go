// Package cli implements mentorctl, an offline front end to the engines and
// a load generator for a running service.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	service "github.com/okian/mentor/internal/app"
	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/okian/mentor/pkg/logger"
	"github.com/spf13/cobra"
)

const name = "mentorctl"

// overridden during build with ldflags
var version = "dev"

// options are the persistent flags shared by every command.
type options struct {
	corpusPath string
	skillsPath string
	logLevel   string
	logFormat  string
	input      string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewRootCommand builds the mentorctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:     name,
		Short:   "mentorctl - skill comparison and recommendation toolkit",
		Version: version,
		Long: `mentorctl runs the comparison, matching, feedback, recommendation and
live classification engines locally against the built-in or a YAML expert
corpus, and load tests a running mentor service.

Requests are JSON documents read from --input or stdin; results are printed
as indented JSON.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.corpusPath, "corpus", "", "YAML expert corpus (default: built-in seed)")
	pf.StringVar(&opts.skillsPath, "skills", "", "YAML skill table merged over the built-in table")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", logger.FormatText, "log format: text or json")
	pf.StringVarP(&opts.input, "input", "i", "-", "request file, - for stdin")

	root.AddCommand(
		newAnalyzeCommand(opts),
		newCompareCommand(opts),
		newMatchCommand(opts),
		newRecommendCommand(opts),
		newClassifyCommand(opts),
		newExpertsCommand(opts),
		newSkillsCommand(opts),
		newLoadTestCommand(opts),
	)
	return root
}

// Execute runs the command tree with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds a stderr logger so stdout stays pure JSON.
func (o *options) newLogger(cmd *cobra.Command) (logger.Logger, error) {
	if err := logger.SetLevelString(o.logLevel); err != nil {
		return nil, err
	}
	return logger.New(cmd.ErrOrStderr(), o.logFormat)
}

// loadSkills returns the built-in table merged with --skills.
func (o *options) loadSkills() (*skill.Registry, error) {
	builtin, err := skill.Builtin()
	if err != nil {
		return nil, fmt.Errorf("load skill table: %w", err)
	}
	if o.skillsPath == "" {
		return builtin, nil
	}
	extra, err := skill.LoadFile(o.skillsPath)
	if err != nil {
		return nil, fmt.Errorf("load skills %s: %w", o.skillsPath, err)
	}
	return builtin.Merge(extra), nil
}

// startService builds and starts an in-process service. Callers stop it.
func (o *options) startService(cmd *cobra.Command) (*service.Service, error) {
	log, err := o.newLogger(cmd)
	if err != nil {
		return nil, err
	}
	skills, err := o.loadSkills()
	if err != nil {
		return nil, err
	}
	opts := []service.Option{service.WithSkills(skills), service.WithLogger(log)}
	if o.corpusPath != "" {
		corpus, err := expert.LoadFile(o.corpusPath)
		if err != nil {
			return nil, fmt.Errorf("load corpus %s: %w", o.corpusPath, err)
		}
		opts = append(opts, service.WithCorpus(corpus))
	}
	svc := service.New(opts...)
	if err := svc.Start(cmd.Context()); err != nil {
		return nil, err
	}
	return svc, nil
}

// readRequest decodes and validates the JSON request named by --input.
func (o *options) readRequest(cmd *cobra.Command, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if o.input != "" && o.input != "-" {
		f, err := os.Open(o.input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
