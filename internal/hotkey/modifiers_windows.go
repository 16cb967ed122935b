//go:build windows

package hotkey

import (
	"golang.design/x/hotkey"

	"thirdspace/internal/config"
)

var modifierMap = map[config.Modifier]hotkey.Modifier{
	config.ModCtrl:  hotkey.ModCtrl,
	config.ModShift: hotkey.ModShift,
	config.ModAlt:   hotkey.ModAlt,
	config.ModSuper: hotkey.ModWin,
}

const registerHint = "the combination is probably registered by another application"
