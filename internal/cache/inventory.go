package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	postKeyPrefix = "post:%s"
	postsListKey  = "posts:first-page"
)

const (
	// PostTTL bounds staleness of a cached single post. This is also the
	// upper bound on how long a cached projection may show an owner's old
	// photo after a profile photo change; post writes invalidate eagerly,
	// owner edits do not.
	PostTTL = 5 * time.Minute
	// ListTTL bounds staleness of the cached first listing page.
	ListTTL = 1 * time.Minute
)

// PostKey returns the cache key for a single post by hex id.
func PostKey(postID string) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// PostsListKey returns the cache key for the default first listing page.
func PostsListKey() string {
	return postsListKey
}

// Invalidate removes a key, if a cache is available.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops the cached post and the list page that may embed it.
func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, postsListKey)
}

// InvalidatePostsList drops the cached first listing page.
func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, postsListKey)
}
