package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/domain"
)

// Sum returns the hex-encoded sha256 of the JSON encoding of v.
func Sum(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ToolsETag returns an ETag for a tool list and logs on failure.
func ToolsETag(logger *zap.Logger, tools []domain.Tool) string {
	return hashWithLogger(logger, "tool", func() (string, error) {
		return Sum(tools)
	})
}

func hashWithLogger(logger *zap.Logger, label string, fn func() (string, error)) string {
	etag, err := fn()
	if err != nil {
		if logger != nil {
			logger.Warn(fmt.Sprintf("%s hash failed", label), zap.Error(err))
		}
		return ""
	}
	return etag
}
