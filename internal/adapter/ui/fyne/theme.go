package fyne

import (
	"image/color"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/tejashwikalptaru/revscope/internal/style"
)

// scopeTheme is the green phosphor Fyne theme. All text is monospace.
type scopeTheme struct {
	style style.Style
	base  fyneapp.Theme
}

// NewTheme returns a Fyne theme built from st.
func NewTheme(st style.Style) fyneapp.Theme {
	return &scopeTheme{style: st, base: theme.DefaultTheme()}
}

func (t *scopeTheme) Color(name fyneapp.ThemeColorName, variant fyneapp.ThemeVariant) color.Color {
	pal := t.style.Palette
	switch name {
	case theme.ColorNameBackground, theme.ColorNameMenuBackground, theme.ColorNameOverlayBackground:
		return pal.Background
	case theme.ColorNameInputBackground, theme.ColorNameHeaderBackground:
		return pal.Panel
	case theme.ColorNameButton:
		return pal.Grid
	case theme.ColorNamePressed, theme.ColorNameHover, theme.ColorNameFocus, theme.ColorNameSelection:
		return pal.ButtonActive
	case theme.ColorNameForeground, theme.ColorNamePrimary:
		return pal.Trace
	case theme.ColorNameForegroundOnPrimary:
		return pal.Background
	case theme.ColorNameDisabled, theme.ColorNamePlaceHolder:
		return pal.TraceDim
	case theme.ColorNameDisabledButton, theme.ColorNameInputBorder, theme.ColorNameSeparator:
		return pal.Border
	case theme.ColorNameError:
		return pal.Alert
	case theme.ColorNameWarning:
		return pal.Marker
	}
	return t.base.Color(name, theme.VariantDark)
}

func (t *scopeTheme) Font(s fyneapp.TextStyle) fyneapp.Resource {
	s.Monospace = true
	return t.base.Font(s)
}

func (t *scopeTheme) Icon(name fyneapp.ThemeIconName) fyneapp.Resource {
	return t.base.Icon(name)
}

func (t *scopeTheme) Size(name fyneapp.ThemeSizeName) float32 {
	if name == theme.SizeNameText {
		return t.style.FontSize
	}
	return t.base.Size(name)
}
