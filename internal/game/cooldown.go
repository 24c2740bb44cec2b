package game

import (
	"fmt"
	"time"
)

// Flash cooldowns in seconds. Lucidity Boots give 10.67% summoner haste,
// Cosmic Insight 15%; the combinations stack multiplicatively, which is why
// the pair is not 300-32-45.
const (
	CooldownBase      = 300
	CooldownWithBoots = 268
	CooldownWithRune  = 255
	CooldownWithBoth  = 231
)

// CalculateFlashCooldown maps the two item flags to a total cooldown.
// Used both when Flash is burned and when an item is toggled mid-cooldown.
func CalculateFlashCooldown(boots, rune bool) int {
	switch {
	case boots && rune:
		return CooldownWithBoth
	case boots:
		return CooldownWithBoots
	case rune:
		return CooldownWithRune
	default:
		return CooldownBase
	}
}

// TimestampToCountdown derives seconds remaining from a ReadyAt instant,
// clamped at zero. 0 (the available sentinel) always yields 0.
func TimestampToCountdown(readyAt int64, now time.Time) int {
	remaining := readyAt - now.UnixMilli()
	if remaining <= 0 {
		return 0
	}
	return int((remaining + 999) / 1000)
}

// FormatCooldown renders seconds as M:SS, e.g. 255 -> "4:15".
func FormatCooldown(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
