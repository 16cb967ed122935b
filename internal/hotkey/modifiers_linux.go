//go:build linux

package hotkey

import (
	"golang.design/x/hotkey"

	"thirdspace/internal/config"
)

// На X11 Alt и Super - это Mod1 и Mod4.
var modifierMap = map[config.Modifier]hotkey.Modifier{
	config.ModCtrl:  hotkey.ModCtrl,
	config.ModShift: hotkey.ModShift,
	config.ModAlt:   hotkey.Mod1,
	config.ModSuper: hotkey.Mod4,
}

// registerHint дополняет ошибку регистрации подсказкой для платформы.
const registerHint = "global hotkeys need an X11 session (or XWayland); the combination may also be grabbed by the desktop"
