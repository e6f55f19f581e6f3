package mapping

import (
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		TempleID:        d.TempleID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     string(d.AccountType),
		Subtype:         d.Subtype,
		ParentAccountID: d.ParentAccountID,
		IsActive:        d.IsActive,
		OpeningDebit:    d.OpeningDebit,
		OpeningCredit:   d.OpeningCredit,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		TempleID:        m.TempleID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		Subtype:         m.Subtype,
		ParentAccountID: m.ParentAccountID,
		IsActive:        m.IsActive,
		OpeningDebit:    m.OpeningDebit,
		OpeningCredit:   m.OpeningCredit,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccounts converts a slice of model Accounts
func ToDomainAccounts(ms []models.Account) []domain.Account {
	out := make([]domain.Account, len(ms))
	for i, m := range ms {
		out[i] = ToDomainAccount(m)
	}
	return out
}
