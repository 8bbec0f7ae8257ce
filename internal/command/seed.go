package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"

	"github.com/lanyardhq/lanyard/internal/sec"
	"github.com/lanyardhq/lanyard/internal/storage"
	"github.com/lanyardhq/lanyard/internal/storage/db"
)

func seedCommand() *cobra.Command {
	var (
		seed      uint64
		delegates int
		startups  int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with generated dev data",
		Long: "Generates delegates, startups, recommendations, and scan history for local\n" +
			"development. Also creates a staff account named \"scanner\" (password \"scanner\")\n" +
			"to attribute the generated scans to.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			faker := gofakeit.New(seed)
			if err := seedData(cmd.Context(), store, faker, delegates, startups); err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "seeded dev data",
				slog.Int("delegates", delegates),
				slog.Int("startups", startups),
			)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed, 0 for nondeterministic")
	cmd.Flags().IntVar(&delegates, "delegates", 25, "number of delegates to generate")
	cmd.Flags().IntVar(&startups, "startups", 10, "number of startups to generate")
	return cmd
}

func seedData(ctx context.Context, store storage.Store, faker *gofakeit.Faker, nDelegates, nStartups int) error {
	scanner, err := seedScanner(ctx, store)
	if err != nil {
		return err
	}

	startups := make([]db.Startup, 0, nStartups)
	for i := range nStartups {
		description := faker.Phrase()
		industry := faker.BuzzWord()
		booth := fmt.Sprintf("%s%d", faker.RandomString([]string{"A", "B", "C"}), i+1)
		email := faker.Email()
		startup, err := store.CreateStartup(ctx, db.CreateStartupParams{
			Name:        faker.Company(),
			Email:       &email,
			Description: &description,
			Industry:    &industry,
			BoothNumber: &booth,
		})
		if err != nil {
			return fmt.Errorf("failed to seed startup: %w", err)
		}
		startups = append(startups, startup)
	}

	for i := range nDelegates {
		email := faker.Email()
		job := faker.JobTitle()
		company := faker.Company()
		delegate, err := store.CreateDelegate(ctx, db.CreateDelegateParams{
			BadgeID:     fmt.Sprintf("BADGE-%04d", i+1),
			Name:        faker.Name(),
			Email:       &email,
			JobTitle:    &job,
			CompanyName: &company,
		})
		if err != nil {
			return fmt.Errorf("failed to seed delegate: %w", err)
		}

		// Recommend a few startups to each delegate, visit roughly half,
		// and log a scan for each visit.
		for _, startup := range pickStartups(faker, startups) {
			rec, err := store.CreateRecommendation(ctx, delegate.ID, startup.ID)
			if err != nil {
				return fmt.Errorf("failed to seed recommendation: %w", err)
			}
			if !faker.Bool() {
				continue
			}
			if _, err = store.MarkRecommendationVisited(ctx, rec.ID); err != nil {
				return err
			}
			if _, err = store.CreateScan(ctx, delegate.ID, scanner.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedScanner creates the staff account the generated scans are attributed
// to, reusing it across runs.
func seedScanner(ctx context.Context, store storage.Store) (db.User, error) {
	user, err := store.GetUserByName(ctx, "scanner")
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return db.User{}, err
	}
	hash, err := sec.HashPassword("scanner")
	if err != nil {
		return db.User{}, err
	}
	return store.CreateUser(ctx, "scanner", hash, db.RoleStaff)
}

func pickStartups(faker *gofakeit.Faker, startups []db.Startup) []db.Startup {
	if len(startups) == 0 {
		return nil
	}
	n := faker.IntRange(1, min(3, len(startups)))
	picked := make([]db.Startup, len(startups))
	copy(picked, startups)
	faker.ShuffleAnySlice(picked)
	return picked[:n]
}
