//go:build ignore

// Скрипт для генерации иконок трея.
// Запуск: go run scripts/generate_icons.go
package main

import (
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
)

func main() {
	dir := "embedded"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Не удалось создать директорию %s: %v", dir, err)
	}

	icons := []struct {
		name  string
		color color.RGBA
	}{
		{"icon_idle.png", color.RGBA{60, 120, 220, 255}},       // Синий
		{"icon_processing.png", color.RGBA{230, 160, 50, 255}}, // Оранжевый
	}

	for _, icon := range icons {
		path := filepath.Join(dir, icon.name)
		if err := generateIcon(path, icon.color); err != nil {
			log.Fatalf("Ошибка генерации %s: %v", icon.name, err)
		}
		log.Printf("Создан: %s", path)
	}
}

// generateIcon рисует два перекрывающихся "облачка" (исходный и переведённый текст).
func generateIcon(path string, c color.RGBA) error {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{c.R, c.G, c.B, 140}

	bubble(img, 6, 8, 38, 30, light)
	bubble(img, 20, 24, 38, 30, c)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

// bubble рисует прямоугольник со скруглёнными углами и хвостиком снизу.
func bubble(img *image.RGBA, x0, y0, w, h int, c color.RGBA) {
	const r = 8
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			if insideRounded(x-x0, y-y0, w, h, r) {
				img.Set(x, y, c)
			}
		}
	}
	// хвостик
	for i := 0; i < 6; i++ {
		for x := x0 + 8; x < x0+8+6-i; x++ {
			img.Set(x, y0+h+i, c)
		}
	}
}

func insideRounded(x, y, w, h, r int) bool {
	cx, cy := x, y
	switch {
	case x < r && y < r:
		cx, cy = r, r
	case x >= w-r && y < r:
		cx, cy = w-r-1, r
	case x < r && y >= h-r:
		cx, cy = r, h-r-1
	case x >= w-r && y >= h-r:
		cx, cy = w-r-1, h-r-1
	default:
		return true
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}
