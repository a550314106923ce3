package cli

import (
	"context"

	service "github.com/okian/mentor/internal/app"
	"github.com/okian/mentor/internal/domain/realtime"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/spf13/cobra"
)

// runWithService starts a service, runs fn and prints its result.
func runWithService[T any](o *options, cmd *cobra.Command, fn func(ctx context.Context, svc *service.Service) (T, error)) error {
	svc, err := o.startService(cmd)
	if err != nil {
		return err
	}
	defer svc.Stop(context.WithoutCancel(cmd.Context()))

	out, err := fn(cmd.Context(), svc)
	if err != nil {
		return err
	}
	return printJSON(cmd, out)
}

func newAnalyzeCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Normalize a raw analysis, match it and build feedback",
		Example: `  echo '{"analysis_id":"a1","learner_id":"amy","skill_type":"Public Speaking",
        "analysis":{"video":{"gesture_score":0.7}}}' | mentorctl analyze`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req service.AnalysisRequest
			if err := o.readRequest(cmd, &req); err != nil {
				return err
			}
			return runWithService(o, cmd, func(ctx context.Context, svc *service.Service) (service.AnalysisOutcome, error) {
				return svc.Analyze(ctx, req)
			})
		},
	}
}

func newCompareCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare normalized metrics against one expert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req service.CompareRequest
			if err := o.readRequest(cmd, &req); err != nil {
				return err
			}
			return runWithService(o, cmd, func(ctx context.Context, svc *service.Service) (service.CompareOutcome, error) {
				return svc.Compare(ctx, req)
			})
		},
	}
}

func newMatchCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "match",
		Short: "Rank the experts closest to normalized metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req service.MatchRequest
			if err := o.readRequest(cmd, &req); err != nil {
				return err
			}
			return runWithService(o, cmd, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.Matches(ctx, req)
			})
		},
	}
}

func newRecommendCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Recommend experts and a learning path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req service.RecommendRequest
			if err := o.readRequest(cmd, &req); err != nil {
				return err
			}
			return runWithService(o, cmd, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.Recommend(ctx, req)
			})
		},
	}
}

type classifyRequest struct {
	SkillType skill.Type      `json:"skill_type"`
	Metrics   realtime.Sample `json:"metrics" validate:"required"`
}

func newClassifyCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Classify one live metrics sample against the skill's thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req classifyRequest
			if err := o.readRequest(cmd, &req); err != nil {
				return err
			}
			return runWithService(o, cmd, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.Classify(ctx, req.Metrics, req.SkillType)
			})
		},
	}
}

func newExpertsCommand(o *options) *cobra.Command {
	var skillType string
	cmd := &cobra.Command{
		Use:   "experts [id]",
		Short: "List experts, or show one expert with patterns and insights",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(o, cmd, func(ctx context.Context, svc *service.Service) (any, error) {
				if len(args) == 1 {
					return svc.Expert(ctx, args[0])
				}
				return svc.Experts(ctx, skill.Type(skillType))
			})
		},
	}
	cmd.Flags().StringVar(&skillType, "skill", "", "only experts with a pattern for this skill")
	return cmd
}

func newSkillsCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "Print the skill table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithService(o, cmd, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.Skills(ctx)
			})
		},
	}
}
