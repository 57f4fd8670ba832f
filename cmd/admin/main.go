// Command admin runs balance history maintenance against the database
// directly: monthly backfill and per-day or per-month deduplication.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/balance"
	"networth/internal/infrastructure/postgres"
	"networth/internal/shared/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("admin error: %v", err)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: admin <backfill|clean-daily|clean-monthly> [flags]")
	}
	command := args[0]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	accountID := flags.String("account-id", "", "account to operate on")
	all := flags.Bool("all", false, "operate on every account")
	timeout := flags.Duration("timeout", 5*time.Minute, "overall timeout")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	if (*accountID == "" && !*all) || (*accountID != "" && *all) {
		return fmt.Errorf("exactly one of -account-id or -all is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	itemRepo := postgres.NewItemRepository(db)
	balanceRepo := postgres.NewBalanceRepository(db)
	balanceService := balance.NewService(balanceRepo, accountRepo, itemRepo, nil)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	targets, err := resolveTargets(ctx, accountRepo, *accountID, *all)
	if err != nil {
		return err
	}

	for _, acct := range targets {
		switch command {
		case "backfill":
			created, err := balanceService.Backfill(ctx, acct.ID)
			if err == balance.ErrNoBalances {
				log.Printf("%s (%s): no balances to backfill from, skipping", acct.DisplayName(), acct.ID)
				continue
			}
			if err != nil {
				return fmt.Errorf("backfill %s: %w", acct.ID, err)
			}
			log.Printf("%s (%s): created %d monthly records", acct.DisplayName(), acct.ID, created)
		case "clean-daily":
			deleted, err := balanceService.DedupDaily(ctx, acct.ID)
			if err != nil {
				return fmt.Errorf("clean-daily %s: %w", acct.ID, err)
			}
			log.Printf("%s (%s): deleted %d duplicate records", acct.DisplayName(), acct.ID, deleted)
		case "clean-monthly":
			deleted, err := balanceService.DedupMonthly(ctx, acct.ID)
			if err != nil {
				return fmt.Errorf("clean-monthly %s: %w", acct.ID, err)
			}
			log.Printf("%s (%s): deleted %d duplicate records", acct.DisplayName(), acct.ID, deleted)
		default:
			return fmt.Errorf("unknown command %q", command)
		}
	}

	return nil
}

func resolveTargets(ctx context.Context, repo *postgres.AccountRepository, accountID string, all bool) ([]*account.Account, error) {
	if all {
		return repo.List(ctx)
	}

	acct, err := repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, account.ErrAccountNotFound
	}
	return []*account.Account{acct}, nil
}
