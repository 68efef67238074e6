package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	UserKeyPrefix  = "user:%d"
	PostKeyPrefix  = "post:%d"
	TermsKeyPrefix = "search:terms:%s:%s"
)

const (
	UserTTL  = 5 * time.Minute
	PostTTL  = 30 * time.Minute
	TermsTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// TermsKey identifies the extracted term set of a query for one language.
// Queries are hashed so arbitrary user input never ends up in a key.
func TermsKey(lang, query string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(query)))
	return fmt.Sprintf(TermsKeyPrefix, lang, hex.EncodeToString(sum[:16]))
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
