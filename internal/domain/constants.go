package domain

import "time"

const (
	DefaultCacheTTL            = 5 * time.Minute
	DefaultMaxCacheSize        = 128
	DefaultMaxSuggestions      = 5
	DefaultMinScore            = 10.0
	DefaultToolTimeout         = 30 * time.Second
	DefaultHealthCheckInterval = 30 * time.Second
	DefaultLatencyWindowSize   = 256
	DefaultListenAddress       = "127.0.0.1:8640"
)

// Tags with contextual meaning to the scorer.
const (
	TagFileOperations  = "file-operations"
	TagGit             = "git"
	TagBatchOperations = "batch-operations"
	TagSingleItem      = "single-item"
)
