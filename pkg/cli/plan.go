package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/eudai-lab/eudaimon/pkg/cli/config"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/usecase"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

func cmdPlan() *cli.Command {
	var userID string
	var mood string
	var timezone string
	var prefs []string
	var messages []string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var libraryCfg config.Library
	var retrievalCfg config.Retrieval
	var privacyCfg config.Privacy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User ID for the session",
			Required:    true,
			Sources:     cli.EnvVars("EUDAIMON_USER_ID"),
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "mood",
			Usage:       "One-line mood description",
			Destination: &mood,
		},
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "IANA timezone for scheduling suggestions",
			Value:       "UTC",
			Destination: &timezone,
		},
		&cli.StringSliceFlag{
			Name:        "pref",
			Usage:       "Preference as key=value (available_time_min, focus_area, time_of_day)",
			Destination: &prefs,
		},
		&cli.StringSliceFlag{
			Name:        "message",
			Usage:       "Conversation message, repeatable, oldest first",
			Destination: &messages,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, libraryCfg.Flags()...)
	flags = append(flags, retrievalCfg.Flags()...)
	flags = append(flags, privacyCfg.Flags()...)

	return &cli.Command{
		Name:    "plan",
		Aliases: []string{"p"},
		Usage:   "Generate a one-shot plan and print it",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			lib, err := libraryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load content library")
			}

			index, err := retrievalCfg.Configure(ctx, lib, llm)
			if err != nil {
				return goerr.Wrap(err, "failed to build retrieval index")
			}

			ucOpts := []usecase.Option{
				usecase.WithRedactor(privacyCfg.Configure()),
				usecase.WithTopK(retrievalCfg.TopK()),
			}
			if llm != nil {
				ucOpts = append(ucOpts, usecase.WithLLM(llm))
			}
			uc := usecase.New(repo, lib, index, ucOpts...)

			conv := model.Conversation{}
			for _, m := range messages {
				conv.Messages = append(conv.Messages, model.Message{
					Role:    model.RoleUser,
					Content: m,
				})
			}

			userCtx := model.NewUserContext(types.UserID(userID), mood, timezone, prefs)

			bundle, err := uc.GeneratePlan(ctx, userCtx, conv)
			if err != nil {
				return goerr.Wrap(err, "failed to generate plan")
			}

			printBundle(bundle)
			return nil
		},
	}
}

func printBundle(bundle *model.PlanBundle) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)
	warn := color.New(color.FgRed, color.Bold)

	title.Fprintln(os.Stdout, bundle.Empathy)
	fmt.Println()

	label.Fprintf(os.Stdout, "Plan for %s (%d min total)\n", bundle.Plan.Day, bundle.Plan.TotalMinutes())
	for i, item := range bundle.Plan.Items {
		fmt.Printf("  %d. %s (%d min)\n", i+1, item.Title, item.DurationMinutes)
		fmt.Printf("     %s\n", item.WhyItHelps)
		fmt.Printf("     How: %s\n", item.Instructions)
		if item.Citation != "" {
			fmt.Printf("     Evidence: %s\n", item.Citation)
		}
		if item.Window != nil {
			fmt.Printf("     When: %s - %s (%s)\n",
				item.Window.Start.Format("15:04"),
				item.Window.End.Format("15:04"),
				item.Window.Timezone)
		}
	}

	if bundle.Plan.Caution != "" {
		fmt.Println()
		warn.Fprintln(os.Stdout, bundle.Plan.Caution)
	}

	if bundle.LifeQuality != nil {
		fmt.Println()
		label.Fprintf(os.Stdout, "Life quality: %.1f (%s)\n", bundle.LifeQuality.Score, bundle.LifeQuality.Trend)
	}

	if bundle.Nudge != "" {
		fmt.Println()
		fmt.Println(bundle.Nudge)
	}
}
