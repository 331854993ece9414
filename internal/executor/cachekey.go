package executor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/vk/scriptforge/internal/action"
)

// CacheKey computes the deterministic content address of an action. The
// action is marshaled, decoded back into generic maps, and re-marshaled, so
// every object level is emitted with sorted keys regardless of declaration
// or wire order. Equal actions therefore always hash to the same key.
func CacheKey(a *action.Action) (string, error) {
	first, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal action %q: %w", a.ID, err)
	}
	var generic any
	if err := json.Unmarshal(first, &generic); err != nil {
		return "", fmt.Errorf("normalize action %q: %w", a.ID, err)
	}
	normalized, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("marshal normalized action %q: %w", a.ID, err)
	}

	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:]), nil
}
