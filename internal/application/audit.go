package application

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/swanstudios/plangate/internal/stablejson"
)

// HashPayload produces the audit hash of a de-identified payload.
// Serialization is canonical, so equal payloads always hash equally
// regardless of map iteration order. The hash is what audit logs store
// in place of the payload itself, and what the router uses to collapse
// duplicate in-flight calls.
func HashPayload(payload map[string]any) (string, error) {
	canonical, err := stablejson.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("hash payload: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
