// Package resources renders the application and tray icons as fyne resources.
package resources

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"fyne.io/fyne/v2"

	"pomodocko/internal/core/pomodoro"
)

const iconSize = 64

var (
	focusColor = color.NRGBA{R: 0xe0, G: 0x4a, B: 0x3a, A: 0xff}
	breakColor = color.NRGBA{R: 0x3f, G: 0xa3, B: 0x5b, A: 0xff}
	leafColor  = color.NRGBA{R: 0x2f, G: 0x7d, B: 0x32, A: 0xff}
)

var iconCache sync.Map

// PhaseIcon returns the tray icon for phase. A paused timer is drawn as a ring.
func PhaseIcon(phase pomodoro.Phase, running bool) (fyne.Resource, error) {
	name := fmt.Sprintf("%s-%s.png", phase, runningName(running))
	return loadResource(name, func() image.Image {
		fill := focusColor
		if phase == pomodoro.PhaseBreak {
			fill = breakColor
		}
		return drawTomato(fill, !running, phase == pomodoro.PhaseFocus)
	})
}

// AppIcon returns the application icon.
func AppIcon() fyne.Resource {
	resource, err := loadResource("pomodocko.png", func() image.Image {
		return drawTomato(focusColor, false, true)
	})
	if err != nil {
		panic(err)
	}
	return resource
}

func runningName(running bool) string {
	if running {
		return "running"
	}
	return "paused"
}

func loadResource(name string, render func() image.Image) (fyne.Resource, error) {
	if cached, ok := iconCache.Load(name); ok {
		return cached.(fyne.Resource), nil
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, render()); err != nil {
		return nil, fmt.Errorf("encode icon %s: %w", name, err)
	}

	resource := fyne.NewStaticResource(name, buffer.Bytes())
	actual, _ := iconCache.LoadOrStore(name, resource)
	return actual.(fyne.Resource), nil
}

// drawTomato paints a disc (or a ring when hollow) with an optional leaf on top.
func drawTomato(fill color.NRGBA, hollow, leaf bool) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize) / 2
	outer := center - 4
	inner := outer - 8

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			distance := math.Hypot(float64(x)+0.5-center, float64(y)+0.5-center-2)
			if distance > outer || (hollow && distance < inner) {
				continue
			}
			canvas.SetNRGBA(x, y, fill)
		}
	}

	if leaf {
		for y := 2; y < 10; y++ {
			half := 10 - y
			for x := int(center) - half; x <= int(center)+half; x++ {
				canvas.SetNRGBA(x, y, leafColor)
			}
		}
	}
	return canvas
}
