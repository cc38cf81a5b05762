package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/trygglabs/trygg/internal/setup/config"
	"github.com/trygglabs/trygg/internal/wordlist"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	app := &cli.Command{
		Name:  "wordlist",
		Usage: "Wordlist validation tool",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Check the wordlist for errors",
				Description: `Check the wordlist for problems that would weaken the keyword matcher:
- Exact duplicate terms
- Phrases a shorter term already covers
- Self-references and related terms that duplicate primary terms
- Hand-written inflections the matcher generates automatically
- Empty required fields and invalid severity or category values

Returns exit code 1 if errors are found, 0 if clean.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory containing wordlist.jsonc (searches the standard config paths when unset)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					list, err := loadWordlist(cmd.String("dir"), logger)
					if err != nil {
						return err
					}

					issues := wordlist.ValidateWordlist(list)
					if len(issues) > 0 {
						fmt.Printf("❌ Found %d issue(s):\n\n", len(issues))

						for _, issue := range issues {
							fmt.Printf("• %s\n", issue.Description)
						}

						return cli.Exit("", 1)
					}

					fmt.Println("✅ No issues found")

					return nil
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// loadWordlist reads the deployed wordlist, treating a missing file as
// an empty list so the check reports it instead of erroring out.
func loadWordlist(dir string, logger *zap.Logger) (*config.Wordlist, error) {
	list, err := config.LoadWordlist(dir)
	if err != nil {
		if errors.Is(err, config.ErrWordlistNotFound) {
			logger.Warn("No wordlist file found in the config search paths")

			return &config.Wordlist{}, nil
		}

		return nil, fmt.Errorf("failed to load wordlist: %w", err)
	}

	logger.Info("Loaded wordlist", zap.Int("terms", len(list.Terms)))

	return list, nil
}
