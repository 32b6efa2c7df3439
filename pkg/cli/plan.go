package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/trek/pkg/model"
	"github.com/m-mizutani/trek/pkg/repository"
	"github.com/m-mizutani/trek/pkg/usecase/itinerary"
)

const flagDateFormat = "2006-01-02"

func planCommand() *cli.Command {
	var (
		cfg        config
		user       string
		origin     string
		dest       string
		startDate  string
		endDate    string
		interests  []string
		pace       string
		singleShot bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "Account email to record the itinerary under",
			Sources:     cli.EnvVars("TREK_USER"),
			Destination: &user,
		},
		&cli.StringFlag{
			Name:        "origin",
			Aliases:     []string{"o"},
			Usage:       "Where the trip starts",
			Required:    true,
			Destination: &origin,
		},
		&cli.StringFlag{
			Name:        "destination",
			Usage:       "Where the trip goes",
			Required:    true,
			Destination: &dest,
		},
		&cli.StringFlag{
			Name:        "start-date",
			Usage:       "First day of the trip (YYYY-MM-DD)",
			Required:    true,
			Destination: &startDate,
		},
		&cli.StringFlag{
			Name:        "end-date",
			Usage:       "Last day of the trip (YYYY-MM-DD)",
			Required:    true,
			Destination: &endDate,
		},
		&cli.StringSliceFlag{
			Name:        "interest",
			Aliases:     []string{"i"},
			Usage:       "Interest to plan around (repeatable)",
			Destination: &interests,
		},
		&cli.StringFlag{
			Name:        "pace",
			Usage:       "Trip pace (relaxed, normal, fast)",
			Destination: &pace,
		},
		&cli.BoolFlag{
			Name:        "single-shot",
			Usage:       "Generate the whole range with one request instead of day by day",
			Destination: &singleShot,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "plan",
		Usage: "Generate an itinerary for a date range",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			start, err := time.Parse(flagDateFormat, startDate)
			if err != nil {
				return goerr.Wrap(err, "invalid start-date, use YYYY-MM-DD")
			}
			end, err := time.Parse(flagDateFormat, endDate)
			if err != nil {
				return goerr.Wrap(err, "invalid end-date, use YYYY-MM-DD")
			}

			// History is only written when both a project and a user are given
			var repo repository.Repository
			if cfg.project != "" && user != "" {
				repo, err = cfg.newRepository(ctx)
				if err != nil {
					return err
				}
				defer repo.Close()
			}

			planner := itinerary.New(cfg.newLLM(), repo)
			text, err := planner.Plan(ctx, itinerary.PlanInput{
				User: user,
				Request: &model.TripRequest{
					Origin:      origin,
					Destination: dest,
					StartDate:   start,
					EndDate:     end,
					Interests:   interests,
					Pace:        model.Pace(pace),
				},
				SingleShot: singleShot,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to generate itinerary")
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", text)
			return nil
		},
	}
}
