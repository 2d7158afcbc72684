// Package notify decides which channel and language a templated message
// should use. It never sends anything.
package notify

import (
	"fmt"
	"strings"

	"github.com/segyhp/pledge-callcenter/internal/domain"
	customError "github.com/segyhp/pledge-callcenter/pkg/errors"
)

// rule is one row of the channel mode decision table.
type rule struct {
	channel domain.Channel
	// language is tried first when resolving a template preview
	language domain.Language
	// languageFixed means the language is policy, not a preference, so
	// neither the donor's language nor fallback applies
	languageFixed  bool
	fallbackReason string
}

var decisionTable = map[domain.ChannelMode]rule{
	domain.ChannelModeSMS: {
		channel:       domain.ChannelSMS,
		language:      domain.LanguageEnglish,
		languageFixed: true,
	},
	domain.ChannelModeWhatsApp: {
		channel:        domain.ChannelWhatsApp,
		language:       domain.LanguageAmharic,
		fallbackReason: "Amharic message missing; used English under WhatsApp-only mode",
	},
	domain.ChannelModeAuto: {
		channel:        domain.ChannelWhatsApp,
		language:       domain.LanguageAmharic,
		fallbackReason: "no Amharic translation available; default mode falls back to English",
	},
}

func lookup(req domain.NotificationRequest) (rule, error) {
	mode := req.PreferredChannelMode
	if mode == "" {
		mode = domain.ChannelModeAuto
	}
	r, ok := decisionTable[mode]
	if !ok {
		return rule{}, customError.WrapInvalidChannelMode(string(mode))
	}
	if !hasBody(req.TemplateBodiesByLanguage, domain.LanguageEnglish) {
		return rule{}, customError.NoTemplateBody(req.TemplateKey)
	}
	return r, nil
}

// Resolve picks the channel and language used to preview a template.
func Resolve(req domain.NotificationRequest) (*domain.NotificationResolution, error) {
	r, err := lookup(req)
	if err != nil {
		return nil, err
	}

	res := &domain.NotificationResolution{
		ResolvedChannel:  r.channel,
		ResolvedLanguage: r.language,
	}
	if !r.languageFixed && !hasBody(req.TemplateBodiesByLanguage, r.language) {
		res.ResolvedLanguage = domain.LanguageEnglish
		res.UsedFallback = true
		res.FallbackReason = r.fallbackReason
	}
	return res, nil
}

// ResolveForDonor picks the language from the recipient's own preference,
// falling back to English when that body is missing. SMS mode stays English.
func ResolveForDonor(req domain.NotificationRequest) (*domain.NotificationResolution, error) {
	r, err := lookup(req)
	if err != nil {
		return nil, err
	}

	res := &domain.NotificationResolution{
		ResolvedChannel:  r.channel,
		ResolvedLanguage: domain.LanguageEnglish,
	}
	if r.languageFixed {
		return res, nil
	}

	lang := req.RecipientLanguage
	switch {
	case lang == domain.LanguageEnglish:
	case !lang.Supported():
		res.UsedFallback = true
		res.FallbackReason = fmt.Sprintf("unsupported language %q; used English", lang)
	case !hasBody(req.TemplateBodiesByLanguage, lang):
		res.UsedFallback = true
		res.FallbackReason = fmt.Sprintf("no %s translation; used English", lang.Name())
	default:
		res.ResolvedLanguage = lang
	}
	return res, nil
}

func hasBody(bodies map[domain.Language]string, lang domain.Language) bool {
	return strings.TrimSpace(bodies[lang]) != ""
}

// Render substitutes {key} placeholders in body. Unknown placeholders are
// left as written.
func Render(body string, vars map[string]string) string {
	if len(vars) == 0 {
		return body
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}
