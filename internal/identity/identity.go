// Package identity derives the external image identifiers attached to indexed faces.
package identity

import (
	"crypto/md5"
	"encoding/hex"
)

// DeriveExternalID returns the hex MD5 digest of bucket followed by objectKey.
// The value correlates a face entry with its source object without storing the
// object location inside the recognition collection.
func DeriveExternalID(bucket, objectKey string) string {
	sum := md5.Sum([]byte(bucket + objectKey))
	return hex.EncodeToString(sum[:])
}
