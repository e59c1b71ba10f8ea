package config

import "time"

// Database and performance constants
const (
	DefaultQueryTimeout = 30 * time.Second
	BatchQueryTimeout   = 30 * time.Second
	ShutdownTimeout     = 15 * time.Second
	StartupTimeout      = 30 * time.Second
)

// Web constants
const (
	DefaultRateLimit = 120
	RateLimitWindow  = time.Minute
)

// Marketplace constants
const (
	DefaultSweepInterval  = time.Minute
	DefaultSweepBatchSize = 500
	DefaultPageSize       = 25
	MaxPageSize           = 100
	OrphanRetryLimit      = 50
)

// Messaging constants
const (
	DefaultEventStream        = "MARKET_EVENTS"
	EventSubjectPrefix        = "market.events"
	DefaultChainSubjectPrefix = "chain.settlement"
	DefaultChainTimeout       = 20 * time.Second
)

// Catalog constants
const (
	CatalogCacheSize       = 64
	CatalogCacheExpiration = 15 * time.Minute
	CatalogFileName        = "runners.json"
)
