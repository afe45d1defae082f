package state

import (
	"crypto/sha256"
	"fmt"
	"os"
	"time"
)

// GenerateSessionID creates a unique ID for a launch session
func GenerateSessionID(startedAt time.Time) string {
	data := fmt.Sprintf("%d:%d", startedAt.UnixNano(), os.Getpid())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:8]) // 16 hex chars is plenty for a local history
}
