package search

import (
	"golang.org/x/text/language"

	"github.com/dailyquota/dailyquota/internal/quota"
)

var catalog = map[language.Tag]map[quota.Code]string{
	language.Turkish: {
		quota.CodeDailyLimitExceeded:   "Günlük limitiniz dolmuştur.",
		quota.CodeMonthlyLimitExceeded: "Aylık limitiniz dolmuştur.",
	},
	language.English: {
		quota.CodeDailyLimitExceeded:   "Your daily limit has been reached.",
		quota.CodeMonthlyLimitExceeded: "Your monthly limit has been reached.",
	},
}

// Messages localizes rejection details by Accept-Language.
type Messages struct {
	supported []language.Tag
	matcher   language.Matcher
}

// NewMessages builds a catalog lookup that falls back to defaultLocale when
// the request names no supported language. Unknown locales fall back to Turkish.
func NewMessages(defaultLocale string) *Messages {
	def := language.Turkish
	if tag, err := language.Parse(defaultLocale); err == nil {
		if base, _ := tag.Base(); base == mustBase(language.English) {
			def = language.English
		}
	}

	supported := []language.Tag{def}
	for tag := range catalog {
		if tag != def {
			supported = append(supported, tag)
		}
	}
	return &Messages{
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}
}

func mustBase(t language.Tag) language.Base {
	b, _ := t.Base()
	return b
}

// Rejection returns the localized detail for code.
func (m *Messages) Rejection(acceptLanguage string, rej *quota.Rejection) string {
	_, idx := language.MatchStrings(m.matcher, acceptLanguage)
	if msg, ok := catalog[m.supported[idx]][rej.Code]; ok {
		return msg
	}
	return rej.Message()
}
