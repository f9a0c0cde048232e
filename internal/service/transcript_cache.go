package service

import (
	"context"
	"errors"
	"time"

	"quiztube/internal/cache"
	"quiztube/internal/domain"

	"go.uber.org/zap"
)

// defaultTranscriptTTL keeps transcripts around long enough for repeated quiz
// generation from the same video without holding them forever.
const defaultTranscriptTTL = 7 * 24 * time.Hour

// TranscriptCacheService caches whole transcripts keyed by video id. Audio is
// still re-fetched for every invocation; only the expensive speech-to-text
// step is skipped on a hit.
type TranscriptCacheService struct {
	cache  domain.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewTranscriptCacheService(c domain.Cache, logger *zap.Logger) *TranscriptCacheService {
	return &TranscriptCacheService{
		cache:  c,
		ttl:    defaultTranscriptTTL,
		logger: logger,
	}
}

func transcriptKey(videoID string) string {
	return cache.GenerateCacheKey("transcript", "youtube", videoID)
}

// Get returns the cached transcript, or "" with a nil error on a miss.
func (s *TranscriptCacheService) Get(ctx context.Context, videoID string) (string, error) {
	val, err := s.cache.Get(ctx, transcriptKey(videoID))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return "", nil
		}
		return "", err
	}
	s.logger.Debug("Transcript cache hit", zap.String("videoID", videoID))
	return val, nil
}

func (s *TranscriptCacheService) Put(ctx context.Context, videoID, transcript string) error {
	return s.cache.Set(ctx, transcriptKey(videoID), transcript, s.ttl)
}
