// Package embedded содержит встроенные ресурсы приложения.
package embedded

import (
	_ "embed"
)

// IconIdle - иконка в состоянии ожидания (синяя).
//
//go:embed icon_idle.png
var IconIdle []byte

// IconProcessing - иконка во время перевода (оранжевая).
//
//go:embed icon_processing.png
var IconProcessing []byte
