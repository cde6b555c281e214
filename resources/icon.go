package resources

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"fyne.io/fyne/v2"
)

const iconSize = 64

var (
	activeColor = color.NRGBA{R: 73, G: 109, B: 137, A: 255}
	pausedColor = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
)

var iconCache sync.Map

// ActiveIcon is the tray and window icon while breaks are scheduled.
func ActiveIcon() fyne.Resource {
	return mustIcon("eyebreak-active.png", activeColor)
}

// PausedIcon is the tray icon while the countdown is paused.
func PausedIcon() fyne.Resource {
	return mustIcon("eyebreak-paused.png", pausedColor)
}

func mustIcon(name string, fill color.NRGBA) fyne.Resource {
	if cached, ok := iconCache.Load(name); ok {
		return cached.(fyne.Resource)
	}
	data, err := renderIcon(fill)
	if err != nil {
		panic(fmt.Errorf("render icon %s: %w", name, err))
	}
	resource := fyne.NewStaticResource(name, data)
	iconCache.Store(name, resource)
	return resource
}

// renderIcon draws a filled square with a white eye and a pupil of the fill colour.
func renderIcon(fill color.NRGBA) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	center := float64(iconSize) / 2

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx := (float64(x) + 0.5 - center) / (center * 0.85)
			dy := (float64(y) + 0.5 - center) / (center * 0.5)
			pupil := (float64(x)+0.5-center)*(float64(x)+0.5-center) + (float64(y)+0.5-center)*(float64(y)+0.5-center)

			switch {
			case pupil <= 10*10:
				img.SetNRGBA(x, y, fill)
			case dx*dx+dy*dy <= 1:
				img.SetNRGBA(x, y, white)
			default:
				img.SetNRGBA(x, y, fill)
			}
		}
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
