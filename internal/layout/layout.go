// Package layout computes the unlock panel drawn over the frozen desktop.
//
// Compute is pure: it turns a session snapshot and a wall-clock time into
// rectangles, strings, fonts and colors. The platform renderer only paints
// what it is given.
package layout

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// Fixed strings shown on the lock surfaces.
const (
	TagText        = "LOCKED"
	Tagline        = "Windows input is locked; type the password and press Enter."
	Hint           = "Use Backspace to correct mistakes. Ctrl+Alt+Delete is suppressed."
	WarningMessage = "Security warning"
	WarningHint    = "Hands off the keyboard and mouse until the warning clears."
	OverlayLabel   = "Type your password to unlock dwmlock"
	SettingsLabel  = "Settings"
	PasswordPrefix = "Password: "
	EmptyMask      = "…"

	TimeFormat = "15:04:05"
	DateFormat = "Monday, January 02 2006"
)

// Font faces.
const (
	PrimaryFont = "Segoe UI Variable Display"
	MonoFont    = "JetBrains Mono"
)

// Font weights (GDI FW_* values).
const (
	WeightNormal = 400
	WeightMedium = 500
	WeightBold   = 700
)

// Panel sizing.
const (
	MinPanelWidth  = 320
	MinPanelHeight = 280
	baseHeight     = 320.0
	minScale       = 0.85
	maxScale       = 1.35
)

// Colors are GDI COLORREF values (0x00BBGGRR).
const (
	ColorTag          uint32 = 0x00E06C75
	ColorTagText      uint32 = 0x00000000
	ColorTime         uint32 = 0x00F5F5F5
	ColorDate         uint32 = 0x00B4C7F5
	ColorTagline      uint32 = 0x0095A5C1
	ColorHint         uint32 = 0x00C7D2EE
	ColorPassword     uint32 = 0x00FFFFFF
	ColorDivider      uint32 = 0x00454545
	ColorBorder       uint32 = 0x00353C4A
	ColorWarning      uint32 = 0x00FF8585
	ColorWarningTime  uint32 = 0x00FFD6A5
	ColorWarningHint  uint32 = 0x00F0C674
	ColorGame         uint32 = 0x0098C379
	ColorSettings     uint32 = 0x002C3550
	ColorSettingsText uint32 = 0x00C7D2EE
	ColorOverlay      uint32 = 0x00000000
	ColorOverlayText  uint32 = 0x00C7D2EE
)

// Background is the panel gradient and accent bar.
type Background struct {
	Top    uint32
	Bottom uint32
	Accent uint32
	Border uint32
}

// Text is one centered single-line string.
type Text struct {
	Rect    domain.Rect
	Text    string
	Size    int
	Weight  int
	Color   uint32
	Face    string
	Fill    uint32 // background fill when HasFill
	HasFill bool
}

// Panel is everything the renderer paints for one frame.
type Panel struct {
	Rect       domain.Rect
	Scale      float64
	Warning    bool
	Background Background
	Divider    *domain.Rect // nil in warning mode
	Texts      []Text
	Settings   domain.Rect // settings button hit area
}

// PanelRect centers a panel of responsive size on a width x height surface.
func PanelRect(width, height int) domain.Rect {
	hMargin := clampRound(float64(width)*0.08, 40, 180)
	vMargin := clampRound(float64(height)*0.10, 50, 200)
	availW := max(width-2*hMargin, MinPanelWidth)
	availH := max(height-2*vMargin, MinPanelHeight)
	prefW := int(math.Round(float64(width) * 0.45))
	prefH := int(math.Round(float64(height) * 0.42))

	w := chooseDimension(prefW, availW, MinPanelWidth)
	h := chooseDimension(prefH, availH, MinPanelHeight)

	left := min(max((width-w)/2, hMargin), width-hMargin-w)
	top := min(max((height-h)/2, vMargin), height-vMargin-h)
	return domain.Rect{Left: left, Top: top, Right: left + w, Bottom: top + h}
}

// Scale is the font/spacing multiplier for a panel.
func Scale(panel domain.Rect) float64 {
	s := float64(panel.Height()) / baseHeight
	return math.Min(math.Max(s, minScale), maxScale)
}

// MaskedPassword renders the password field for n typed characters.
func MaskedPassword(n int) string {
	if n <= 0 {
		return PasswordPrefix + EmptyMask
	}
	return PasswordPrefix + strings.Repeat("*", n)
}

// GameLine renders the mini-game status.
func GameLine(g domain.GameState) string {
	return fmt.Sprintf("Target: %s  Score: %d  Misses: %d", g.Target, g.Score, g.Misses)
}

// SettingsButton is the hit area of the settings button on a surface.
func SettingsButton(width, height int) domain.Rect {
	rect := PanelRect(width, height)
	return settingsButton(rect, Scale(rect))
}

// Compute lays out the panel for a snapshot at wall-clock time now.
func Compute(snap domain.Snapshot, now time.Time) Panel {
	rect := PanelRect(snap.Frame.Width, snap.Frame.Height)
	scale := Scale(rect)

	p := Panel{
		Rect:     rect,
		Scale:    scale,
		Warning:  snap.Warning,
		Settings: settingsButton(rect, scale),
	}
	if snap.Warning {
		p.Background = Background{Top: 0x00300030, Bottom: 0x00100010, Accent: 0x007F1D1D, Border: ColorBorder}
		p.Texts = warningContent(rect, scale, snap, now)
	} else {
		p.Background = Background{Top: 0x0020294A, Bottom: 0x000B1323, Accent: 0x004357B7, Border: ColorBorder}
		var divider domain.Rect
		p.Texts, divider = normalContent(rect, scale, snap, now)
		p.Divider = &divider
	}

	p.Texts = append(p.Texts, Text{
		Rect:    p.Settings,
		Text:    SettingsLabel,
		Size:    scaled(14, scale),
		Weight:  WeightMedium,
		Color:   ColorSettingsText,
		Face:    PrimaryFont,
		Fill:    ColorSettings,
		HasFill: true,
	})
	return p
}

// Band is one horizontal strip of the panel gradient.
type Band struct {
	Rect  domain.Rect
	Color uint32
}

// Gradient splits rect into up to n bands blending from top to bottom color.
func Gradient(rect domain.Rect, top, bottom uint32, n int) []Band {
	h := rect.Height()
	if h <= 0 || n <= 0 {
		return nil
	}
	n = min(n, h)
	bands := make([]Band, 0, n)
	for i := 0; i < n; i++ {
		r := rect
		r.Top = rect.Top + h*i/n
		r.Bottom = rect.Top + h*(i+1)/n
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		bands = append(bands, Band{Rect: r, Color: BlendColor(top, bottom, t)})
	}
	return bands
}

// BlendColor mixes two COLORREF values; t=0 gives a, t=1 gives b.
func BlendColor(a, b uint32, t float64) uint32 {
	t = math.Min(math.Max(t, 0), 1)
	var out uint32
	for shift := 0; shift <= 16; shift += 8 {
		ca := float64((a >> shift) & 0xFF)
		cb := float64((b >> shift) & 0xFF)
		out |= uint32(math.Round(ca+(cb-ca)*t)) << shift
	}
	return out
}

func normalContent(rect domain.Rect, scale float64, snap domain.Snapshot, now time.Time) ([]Text, domain.Rect) {
	spacing := scaled(24, scale)

	tag := domain.Rect{Left: rect.Left + spacing, Top: rect.Top + spacing/2}
	tag.Right = tag.Left + scaled(140, scale)
	tag.Bottom = tag.Top + scaled(34, scale)

	timeRect := inset(rect, spacing)
	timeRect.Top = tag.Bottom + spacing
	timeRect.Bottom = timeRect.Top + scaled(110, scale)

	dateRect := timeRect
	dateRect.Top = timeRect.Bottom - scaled(10, scale)
	dateRect.Bottom = dateRect.Top + scaled(42, scale)

	divider := domain.Rect{Left: rect.Left, Right: rect.Right, Top: dateRect.Bottom + spacing/2}
	divider.Bottom = divider.Top + 2

	pw := inset(rect, spacing)
	pw.Top = dateRect.Bottom + spacing
	pw.Bottom = pw.Top + scaled(60, scale)

	tagline := pw
	tagline.Top = pw.Bottom + spacing/2
	tagline.Bottom = tagline.Top + scaled(28, scale)

	hint := tagline
	hint.Top = tagline.Bottom + spacing/2
	hint.Bottom = hint.Top + scaled(24, scale)

	texts := []Text{
		{Rect: tag, Text: TagText, Size: 18, Weight: WeightBold, Color: ColorTagText, Face: PrimaryFont, Fill: ColorTag, HasFill: true},
		{Rect: timeRect, Text: now.Format(TimeFormat), Size: scaled(96, scale), Weight: WeightBold, Color: ColorTime, Face: PrimaryFont},
		{Rect: dateRect, Text: now.Format(DateFormat), Size: scaled(28, scale), Weight: WeightNormal, Color: ColorDate, Face: PrimaryFont},
		passwordText(pw, scale, snap.InputLength),
		{Rect: tagline, Text: Tagline, Size: scaled(20, scale), Weight: WeightNormal, Color: ColorTagline, Face: PrimaryFont},
		{Rect: hint, Text: Hint, Size: scaled(18, scale), Weight: WeightMedium, Color: ColorHint, Face: PrimaryFont},
	}
	if snap.Game.Active {
		texts = append(texts, gameText(hint, spacing, scale, snap.Game))
	}
	return texts, divider
}

func warningContent(rect domain.Rect, scale float64, snap domain.Snapshot, now time.Time) []Text {
	spacing := scaled(22, scale)

	alert := inset(rect, spacing)
	alert.Top = rect.Top + spacing
	alert.Bottom = alert.Top + scaled(90, scale)

	timeRect := alert
	timeRect.Top = alert.Bottom
	timeRect.Bottom = timeRect.Top + scaled(60, scale)

	pw := inset(timeRect, spacing)
	pw.Top = timeRect.Bottom + spacing
	pw.Bottom = pw.Top + scaled(60, scale)

	hint := pw
	hint.Top = pw.Bottom + spacing/2
	hint.Bottom = hint.Top + scaled(30, scale)

	texts := []Text{
		{Rect: alert, Text: WarningMessage + "!", Size: scaled(54, scale), Weight: WeightBold, Color: ColorWarning, Face: PrimaryFont},
		{Rect: timeRect, Text: now.Format(TimeFormat), Size: scaled(40, scale), Weight: WeightMedium, Color: ColorWarningTime, Face: PrimaryFont},
		passwordText(pw, scale, snap.InputLength),
		{Rect: hint, Text: WarningHint, Size: scaled(22, scale), Weight: WeightNormal, Color: ColorWarningHint, Face: PrimaryFont},
	}
	if snap.Game.Active {
		texts = append(texts, gameText(hint, spacing, scale, snap.Game))
	}
	return texts
}

func passwordText(r domain.Rect, scale float64, n int) Text {
	return Text{Rect: r, Text: MaskedPassword(n), Size: scaled(28, scale), Weight: WeightNormal, Color: ColorPassword, Face: MonoFont}
}

func gameText(above domain.Rect, spacing int, scale float64, g domain.GameState) Text {
	r := above
	r.Top = above.Bottom + spacing/2
	r.Bottom = r.Top + scaled(26, scale)
	return Text{Rect: r, Text: GameLine(g), Size: scaled(20, scale), Weight: WeightMedium, Color: ColorGame, Face: MonoFont}
}

func settingsButton(rect domain.Rect, scale float64) domain.Rect {
	w := scaled(88, scale)
	h := scaled(28, scale)
	margin := scaled(12, scale)
	return domain.Rect{
		Left:   rect.Right - margin - w,
		Top:    rect.Top + margin,
		Right:  rect.Right - margin,
		Bottom: rect.Top + margin + h,
	}
}

func chooseDimension(preferred, available, minSize int) int {
	limited := min(preferred, available)
	if available > minSize {
		return max(limited, minSize)
	}
	return max(available, 0)
}

func inset(r domain.Rect, dx int) domain.Rect {
	r.Left += dx
	r.Right -= dx
	return r
}

func scaled(v int, scale float64) int {
	return int(math.Round(float64(v) * scale))
}

func clampRound(v, lo, hi float64) int {
	return int(math.Round(math.Min(math.Max(v, lo), hi)))
}
