// Package cache holds the ledger's lookup caches: an in-process account cache and the chain report
// cache (redis when configured, in-process otherwise).
package cache

import (
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	gocache "github.com/patrickmn/go-cache"
)

// AccountCache caches accounts by temple and code.
type AccountCache struct {
	c *gocache.Cache
}

var _ portsrepo.AccountCache = (*AccountCache)(nil)

// NewAccountCache creates a cache whose entries live for ttl.
func NewAccountCache(ttl time.Duration) *AccountCache {
	return &AccountCache{c: gocache.New(ttl, 2*ttl)}
}

func accountKey(templeID, code string) string {
	return templeID + "/" + code
}

func (a *AccountCache) Get(templeID, code string) (domain.Account, bool) {
	v, ok := a.c.Get(accountKey(templeID, code))
	if !ok {
		return domain.Account{}, false
	}
	return v.(domain.Account), true
}

func (a *AccountCache) Set(account domain.Account) {
	a.c.SetDefault(accountKey(account.TempleID, account.Code), account)
}

func (a *AccountCache) Invalidate(templeID, code string) {
	a.c.Delete(accountKey(templeID, code))
}
