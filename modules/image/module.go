package image

import (
	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/registry"
)

// Module implements registry.Module and wires the image executor to the
// asset_image action type.
type Module struct{}

// Register registers the module's executor with the central registry.
func (Module) Register(r *registry.Registry) {
	r.Register(string(action.TypeAssetImage), New())
}
