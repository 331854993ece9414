package engine

import (
	"fmt"

	"github.com/vk/scriptforge/internal/action"
)

func errNoExecutor(t action.Type) error {
	return fmt.Errorf("no executor registered for action type %q", t)
}
