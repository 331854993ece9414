package app

import (
	"github.com/vk/scriptforge/internal/registry"
	"github.com/vk/scriptforge/modules/cutscene"
	"github.com/vk/scriptforge/modules/image"
	"github.com/vk/scriptforge/modules/speech"
)

// coreModules lists the executor modules installed by default.
var coreModules = []registry.Module{
	image.Module{},
	speech.Module{},
	cutscene.Module{},
}
