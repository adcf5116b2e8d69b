package directory

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get for an absent key.
var ErrNotFound = errors.New("key not found")

// Store is the read side of the key-value store holding the channel directory.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Writer is used by administration tooling to maintain the directory.
type Writer interface {
	Store
	Set(ctx context.Context, key, value string) error
	ReplaceSet(ctx context.Context, key string, members []string) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	keyPrefix    = "channel:"
	adminsSuffix = ":admins"
	nameSuffix   = ":name"

	// AdminsPattern enumerates every known channel.
	AdminsPattern = keyPrefix + "*" + adminsSuffix
)

func AdminsKey(id string) string { return keyPrefix + id + adminsSuffix }

func NameKey(id string) string { return keyPrefix + id + nameSuffix }

// channelIDFromKey extracts <id> from "channel:<id>:admins".
func channelIDFromKey(key string) (string, bool) {
	if len(key) <= len(keyPrefix)+len(adminsSuffix) {
		return "", false
	}
	if key[:len(keyPrefix)] != keyPrefix || key[len(key)-len(adminsSuffix):] != adminsSuffix {
		return "", false
	}
	return key[len(keyPrefix) : len(key)-len(adminsSuffix)], true
}
