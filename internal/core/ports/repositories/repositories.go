package repositories

// Repositories gives access to every repository of the ledger, either directly against the store or
// bound to a unit of work.
type Repositories interface {
	Accounts() AccountRepositoryFacade
	Journals() JournalRepositoryFacade
	Periods() PeriodRepositoryFacade
	Reconciliations() ReconciliationRepositoryFacade
}

// Store is what services depend on: repositories plus unit-of-work control.
type Store interface {
	Repositories
	TransactionManager
}
