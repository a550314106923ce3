package cli

import (
	"runtime"

	"github.com/okian/mentor/internal/domain/skill"
	"github.com/okian/mentor/internal/loadtest"
	"github.com/spf13/cobra"
)

func newLoadTestCommand(o *options) *cobra.Command {
	cfg := loadtest.Config{}
	var skillType string
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Submit generated analyses to a running service and verify rankings",
		Example: `  mentorctl loadtest --url http://localhost:9080 --analyses 50000 --workers 16
  mentorctl loadtest --skill "Public Speaking" --duplicates 0.1 --output run.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := o.newLogger(cmd)
			if err != nil {
				return err
			}
			skills, err := o.loadSkills()
			if err != nil {
				return err
			}
			cfg.SkillType = skill.Type(skillType)
			runner, err := loadtest.NewRunner(cfg, skills, log)
			if err != nil {
				return err
			}
			stats, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, struct {
				*loadtest.Stats
				SuccessRate float64
				Throughput  float64
			}{stats, stats.SuccessRate(), stats.Throughput()})
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", loadtest.DefaultBaseURL, "base URL of the service")
	f.StringVar(&skillType, "skill", string(loadtest.DefaultSkillType), "skill type of generated analyses")
	f.IntVar(&cfg.Analyses, "analyses", loadtest.DefaultAnalyses, "number of analyses to submit")
	f.IntVar(&cfg.Learners, "learners", loadtest.DefaultLearners, "number of distinct learners")
	f.IntVar(&cfg.TopN, "top", loadtest.DefaultTopN, "leaderboard entries to fetch")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "concurrent requests")
	f.DurationVar(&cfg.Timeout, "timeout", loadtest.DefaultTimeout, "HTTP request timeout")
	f.Float64Var(&cfg.DuplicateRatio, "duplicates", loadtest.DefaultDuplicateRatio, "share of analyses replayed with the same id")
	f.Uint64Var(&cfg.Seed, "seed", 0, "generator seed, 0 for time based")
	f.StringVar(&cfg.OutputFile, "output", "", "write generated analyses to this JSON file")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log individual failures")
	return cmd
}
