package localstore

// Key names a snapshot slot in the local store
type Key string

// KeyPrefix namespaces every key written by the dashboard
const KeyPrefix = "stoxy_"

const (
	KeyPortfolio        Key = KeyPrefix + "portfolio"
	KeyHoldings         Key = KeyPrefix + "holdings"
	KeyWatchlist        Key = KeyPrefix + "watchlist"
	KeyAlerts           Key = KeyPrefix + "alerts"
	KeyNews             Key = KeyPrefix + "news"
	KeySettings         Key = KeyPrefix + "settings"
	KeyUserProfile      Key = KeyPrefix + "user_profile"
	KeyLastSync         Key = KeyPrefix + "last_sync"
	KeyPortfolios       Key = KeyPrefix + "portfolios"
	KeyCurrentPortfolio Key = KeyPrefix + "current_portfolio"
)

// AllKeys lists every key the store manages
var AllKeys = []Key{
	KeyPortfolio,
	KeyHoldings,
	KeyWatchlist,
	KeyAlerts,
	KeyNews,
	KeySettings,
	KeyUserProfile,
	KeyLastSync,
	KeyPortfolios,
	KeyCurrentPortfolio,
}

var validKeys = func() map[Key]bool {
	m := make(map[Key]bool, len(AllKeys))
	for _, k := range AllKeys {
		m[k] = true
	}
	return m
}()

// Valid reports whether k is a managed key
func (k Key) Valid() bool {
	return validKeys[k]
}
