package app

import (
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/timebank-backend/internal/infrastructure/persistence"
)

// Repositories - набор хранилищ одного бэкенда. Tx обязан быть тем же хранилищем, что и репозитории.
type Repositories struct {
	Tx           repository.Transactor
	Users        repository.UserRepository
	Wallets      repository.WalletRepository
	Transactions repository.TransactionRepository
	Tasks        repository.TaskRepository
	Proposals    repository.ProposalRepository
	Contracts    repository.ContractRepository
}

func MemoryRepositories() Repositories {
	store := memory.NewStore()
	return Repositories{
		Tx:           store,
		Users:        memory.NewUserRepository(store),
		Wallets:      memory.NewWalletRepository(store),
		Transactions: memory.NewTransactionRepository(store),
		Tasks:        memory.NewTaskRepository(store),
		Proposals:    memory.NewProposalRepository(store),
		Contracts:    memory.NewContractRepository(store),
	}
}

func PostgresRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Tx:           persistence.NewTransactor(db),
		Users:        persistence.NewUserRepository(db),
		Wallets:      persistence.NewWalletRepository(db),
		Transactions: persistence.NewTransactionRepository(db),
		Tasks:        persistence.NewTaskRepository(db),
		Proposals:    persistence.NewProposalRepository(db),
		Contracts:    persistence.NewContractRepository(db),
	}
}
