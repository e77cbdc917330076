package theme

import (
	"fmt"
	"image/color"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderNote(lane int, denom int) string {
	c := getNoteColor(denom)
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, syms[lane])
}

func (t *DefaultTheme) RenderHitField(lane int) string {
	return barSyms[lane]
}

func (t *DefaultTheme) JudgementLabel(name string) string {
	label, ok := judgementLabels[name]
	if !ok {
		return name
	}
	return label
}

var (
	syms    = [...]string{"⬤", "⬤", "⬤", "⬤"}
	barSyms = [...]string{"-", "-", "-", "-"}

	// Beat grid resolution decides the note color.
	noteColors = map[int]color.RGBA{
		1:  {R: 236, G: 30, B: 0},   // 1/4 red
		2:  {R: 0, G: 118, B: 236},  // 1/8 blue
		4:  {R: 236, G: 195, B: 0},  // 1/16 yellow
		-1: {R: 255, G: 255, B: 255},
	}

	judgementLabels = map[string]string{
		"perfect": "    \033[38;5;153mPerfect\033[0m",
		"great":   "      \033[1;36mGreat\033[0m",
		"good":    "       \033[1;32mGood\033[0m",
		"miss":    "       \033[1;31mMiss\033[0m",
	}
)

func getNoteColor(d int) color.RGBA {
	c, ok := noteColors[d]
	if !ok {
		return noteColors[-1]
	}
	return c
}
