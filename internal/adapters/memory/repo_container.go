package memory

import (
	portsrepo "github.com/SscSPs/unified_pay/internal/core/ports/repositories"
)

// NewRepositoryProvider wires fresh in-memory repositories that share one settlement writer.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	accounts := NewAccountRepository()
	transactions := NewTransactionRepository()
	return portsrepo.RepositoryProvider{
		AccountRepo:     accounts,
		TransactionRepo: transactions,
		SettlementRepo:  NewSettlementRepository(accounts, transactions),
	}
}
