package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/trek/pkg/repository"
	"github.com/m-mizutani/trek/pkg/usecase/chat"
)

func chatCommand() *cli.Command {
	var (
		cfg  config
		user string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "Account email whose chat history is replayed and extended",
			Sources:     cli.EnvVars("TREK_USER"),
			Destination: &user,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive travel chat",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			var (
				repo repository.Repository
				err  error
			)
			if cfg.project != "" && user != "" {
				repo, err = cfg.newRepository(ctx)
				if err != nil {
					return err
				}
				defer repo.Close()
			}

			session, err := chat.New(ctx, chat.NewInput{
				Repo: repo,
				LLM:  cfg.newLLM(),
				User: user,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to create chat session")
			}

			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprintf(c.Root().Writer, "Chat session started. Type 'exit' to quit.\n")

			for {
				fmt.Fprintf(c.Root().Writer, "> ")
				if !scanner.Scan() {
					break
				}

				message := scanner.Text()
				if message == "exit" {
					break
				}

				if message == "" {
					continue
				}

				reply, err := session.Send(ctx, message)
				if err != nil {
					return goerr.Wrap(err, "failed to send message")
				}

				fmt.Fprintf(c.Root().Writer, "%s\n", reply)
			}

			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil
		},
	}
}
