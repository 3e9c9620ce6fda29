package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/timebank-backend/internal/config"
	"github.com/ignatzorin/timebank-backend/internal/ledger"
	"github.com/ignatzorin/timebank-backend/internal/sweep"
	"github.com/ignatzorin/timebank-backend/internal/usecase/wallet"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции схемы и очереди River",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requirePostgres(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			return b.pg.Migrate(cmd.Context(), cfg.MigrationsPath)
		},
	}
}

func newSweepCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Однократно закрыть просроченные задачи и отклики",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requirePostgres(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			s := sweep.NewSweeper(b.repos.Tx, b.repos.Tasks, b.repos.Proposals, cfg.ProposalTTL, cfg.SweepBatchSize)
			report, err := s.Run(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "задач закрыто: %d, откликов закрыто: %d\n", report.TasksExpired, report.ProposalsExpired)
			return nil
		},
	}
}

// newWithdrawalCmd - ручное завершение вывода средств оператором.
func newWithdrawalCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdrawal",
		Short: "Завершить ожидающий вывод средств",
	}

	settle := func(success bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("некорректный id операции %q", args[0])
			}

			b, err := requirePostgres(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			l := ledger.New(b.repos.Tx, b.repos.Wallets, ledger.NewJournal(b.repos.Transactions))
			tx, err := wallet.NewSettleWithdrawalUseCase(l).Execute(cmd.Context(), id, success)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "операция %d: %s, баланс %s\n", tx.ID, tx.Status, tx.BalanceAfter.String())
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "complete <id>",
			Short: "Подтвердить вывод",
			Args:  cobra.ExactArgs(1),
			RunE:  settle(true),
		},
		&cobra.Command{
			Use:   "fail <id>",
			Short: "Отклонить вывод и вернуть средства",
			Args:  cobra.ExactArgs(1),
			RunE:  settle(false),
		},
	)
	return cmd
}
