// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package widget

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

type palette map[fyne.ThemeColorName]color.Color

var (
	lightPalette = palette{
		theme.ColorNameBackground:       color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff},
		theme.ColorNamePrimary:          color.NRGBA{R: 0xd8, G: 0x5a, B: 0x00, A: 0xff},
		theme.ColorNameButton:           color.NRGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff},
		theme.ColorNameHover:            color.NRGBA{R: 0xdd, G: 0xe6, B: 0xf0, A: 0xff},
		theme.ColorNameForeground:       color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff},
		theme.ColorNameInputBackground:  color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		theme.ColorNameSelection:        color.NRGBA{R: 0xbb, G: 0xde, B: 0xfb, A: 0xff},
		theme.ColorNameHeaderBackground: color.NRGBA{R: 0xe3, G: 0xea, B: 0xf2, A: 0xff},
	}
	darkPalette = palette{
		theme.ColorNameBackground:       color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff},
		theme.ColorNamePrimary:          color.NRGBA{R: 0xff, G: 0xb3, B: 0x47, A: 0xff},
		theme.ColorNameButton:           color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		theme.ColorNameHover:            color.NRGBA{R: 0x3a, G: 0x44, B: 0x50, A: 0xff},
		theme.ColorNameForeground:       color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff},
		theme.ColorNameInputBackground:  color.NRGBA{R: 0x2d, G: 0x2d, B: 0x2d, A: 0xff},
		theme.ColorNameSelection:        color.NRGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff},
		theme.ColorNameHeaderBackground: color.NRGBA{R: 0x28, G: 0x30, B: 0x3a, A: 0xff},
	}
)

// Theme is the table theme. The primary color marks filter matches.
type Theme struct {
	compact bool
}

var _ fyne.Theme = (*Theme)(nil)

// NewTheme returns the table theme. Compact reduces padding.
func NewTheme(compact bool) *Theme {
	return &Theme{compact: compact}
}

func (t *Theme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	p := darkPalette
	if variant == theme.VariantLight {
		p = lightPalette
	}
	if c, ok := p[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *Theme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *Theme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *Theme) Size(name fyne.ThemeSizeName) float32 {
	if t.compact {
		switch name {
		case theme.SizeNamePadding:
			return 3
		case theme.SizeNameInnerPadding:
			return 6
		case theme.SizeNameText:
			return 13
		}
	}
	switch name {
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameSeparatorThickness:
		return 1
	}
	return theme.DefaultTheme().Size(name)
}
