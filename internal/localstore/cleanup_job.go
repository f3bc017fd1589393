package localstore

import (
	"github.com/rs/zerolog"
)

// CleanupJob removes expired search cache entries.
// It should be scheduled to run daily.
type CleanupJob struct {
	cache *SearchCache
	log   zerolog.Logger
}

// NewCleanupJob creates a new search cache cleanup job
func NewCleanupJob(cache *SearchCache, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		cache: cache,
		log:   log.With().Str("job", "search_cache_cleanup").Logger(),
	}
}

// Run deletes all expired entries
func (j *CleanupJob) Run() error {
	deleted, err := j.cache.DeleteExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired search results")
		return err
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("Cleaned up expired search results")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *CleanupJob) Name() string {
	return "search_cache_cleanup"
}
