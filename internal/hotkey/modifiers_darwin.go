//go:build darwin

package hotkey

import (
	"golang.design/x/hotkey"

	"thirdspace/internal/config"
)

// На macOS Alt - это Option, Super - Cmd.
var modifierMap = map[config.Modifier]hotkey.Modifier{
	config.ModCtrl:  hotkey.ModCtrl,
	config.ModShift: hotkey.ModShift,
	config.ModAlt:   hotkey.ModOption,
	config.ModSuper: hotkey.ModCmd,
}

const registerHint = "check that the combination is not used by the system or another app"
