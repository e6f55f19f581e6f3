package services

import (
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/matching"
	"github.com/SscSPs/temple_ledger/internal/platform/config"
)

// Dependencies are the adapters services need besides the store. Caches and the log reader are optional.
type Dependencies struct {
	AuditSink    portsrepo.AuditSink
	AuditLogs    portsrepo.AuditLogReader
	AccountCache portsrepo.AccountCache
	ChainReports portsrepo.ChainReportCache
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, store portsrepo.Store, deps Dependencies) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	var accountOpts []AccountOption
	if deps.AccountCache != nil {
		accountOpts = append(accountOpts, WithAccountCache(deps.AccountCache))
	}
	container.Account = NewAccountService(store, accountOpts...)

	// The journal engine resolves accounts through the account service so lookups share its cache
	container.Journal = NewJournalService(store, container.Account, deps.AuditSink,
		WithEntryNumberPrefix(cfg.EntryNumberPrefix),
	)

	var integrityOpts []IntegrityOption
	if deps.ChainReports != nil {
		integrityOpts = append(integrityOpts, WithChainReportCache(deps.ChainReports))
	}
	if deps.AuditLogs != nil {
		integrityOpts = append(integrityOpts, WithAuditLogReader(deps.AuditLogs))
	}
	container.Integrity = NewIntegrityService(store, integrityOpts...)

	container.Period = NewPeriodService(store, container.Journal,
		WithDefaultEquityCode(cfg.ClosingEquityAccountCode),
		WithFiscalYearStartMonth(cfg.FiscalYearStartMonth),
	)

	container.Reconciliation = NewReconciliationService(store,
		WithMatchConfig(matching.Config{
			DateToleranceDays: cfg.ReconDateToleranceDays,
			AmountTolerance:   cfg.ReconAmountTolerance,
		}),
	)

	return container
}
