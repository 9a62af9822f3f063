package synth

import (
	"math"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

type span struct{ lo, hi float64 }

func (s span) draw(rng *rand.Rand) float64 {
	return s.lo + rng.Float64()*(s.hi-s.lo)
}

// Words per minute.
var typingSpeeds = map[models.UserType]span{
	models.UserPowerUser: {60, 80},
	models.UserCasual:    {30, 50},
	models.UserFirstTime: {20, 40},
}

// Seconds spent deciding before a click, hover or select. All bands sit in 1–10 s.
var decisionTimes = map[models.UserType]span{
	models.UserPowerUser: {1, 4},
	models.UserCasual:    {1.5, 7},
	models.UserFirstTime: {2.5, 10},
}

var readingScale = map[models.UserType]float64{
	models.UserPowerUser: 0.6,
	models.UserCasual:    1.0,
	models.UserFirstTime: 1.4,
}

var (
	pageLoad    = span{0.3, 3}
	readingTime = span{5, 45}
)

var highStakesIntents = []string{"purchase", "checkout", "submit", "confirm", "pay", "order", "register", "delete"}

func isHighStakes(intent string) bool {
	intent = strings.ToLower(intent)
	for _, k := range highStakesIntents {
		if strings.Contains(intent, k) {
			return true
		}
	}
	return false
}

// sampleTypingSpeed draws the per-trajectory typing speed.
func sampleTypingSpeed(u models.UserType, rng *rand.Rand) float64 {
	s, ok := typingSpeeds[u]
	if !ok {
		s = typingSpeeds[models.UserCasual]
	}
	return s.draw(rng)
}

func decisionGap(p *Profile, intent string) float64 {
	s, ok := decisionTimes[p.UserType]
	if !ok {
		s = decisionTimes[models.UserCasual]
	}
	if isHighStakes(intent) {
		s.lo += (s.hi - s.lo) / 2
	}
	return s.draw(p.rng) * 1000
}

func readingGap(p *Profile) float64 {
	scale, ok := readingScale[p.UserType]
	if !ok {
		scale = 1
	}
	return readingTime.draw(p.rng) * scale * 1000
}

func typingGap(p *Profile, value string) float64 {
	chars := utf8.RuneCountInString(value)
	return float64(chars) * 60000 / (p.TypingWPM * 5)
}

// gapFor returns the delay in ms before an action of type t. waitMs is the
// explicit idle period of a wait action, negative when absent.
func gapFor(p *Profile, t models.ActionType, intent, value string, waitMs int64) int64 {
	var gap float64
	switch t {
	case models.ActionTypeText:
		if value == "" {
			gap = decisionGap(p, intent)
		} else {
			gap = typingGap(p, value)
		}
	case models.ActionClick, models.ActionHover, models.ActionSelect:
		gap = decisionGap(p, intent)
	case models.ActionNavigate, models.ActionRefresh:
		gap = pageLoad.draw(p.rng) * 1000
	case models.ActionWait:
		if waitMs >= 0 {
			gap = float64(waitMs)
		} else {
			gap = readingGap(p)
		}
	default:
		gap = readingGap(p)
	}
	return max(int64(math.Round(gap)), 1)
}
