package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session (JTI).
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// AttemptAnswersKey returns the cache key for the autosaved answers of a
// user's active attempt.
func (r *CacheKeyStruct) AttemptAnswersKey(userID int) string {
	return fmt.Sprintf("user:%d:attempt:answers", userID)
}

// AttemptMetaKey returns the cache key for the metadata (module, start time,
// time limit) of a user's active attempt.
func (r *CacheKeyStruct) AttemptMetaKey(userID int) string {
	return fmt.Sprintf("user:%d:attempt:meta", userID)
}

var CacheKey = NewCacheKeyStruct()
