package action

import (
	"encoding/json"
	"fmt"
)

// DecodeDocument unmarshals a raw script into its typed form. It assumes the
// document already passed structural validation; a decode failure here means
// the caller skipped that step.
func DecodeDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode script document: %w", err)
	}
	return &doc, nil
}
