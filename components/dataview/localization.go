package dataview

import (
	"context"
	"strings"

	"github.com/ettle/strcase"
)

// TranslationService exposes locale-aware translation for labels and messages.
type TranslationService interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

// ResolveLocalizedValue selects the best translation for the provided locale and falls back to the supplied value.
// Keys are matched case-insensitively, and language-region pairs (`es-mx`) fall back to their
// base language (`es`) when present.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		if candidate == "" {
			continue
		}
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	return fallback
}

// NameForLocale returns the display name for the requested locale.
func (c ResourceConfig) NameForLocale(locale string) string {
	return ResolveLocalizedValue(c.NameLocalized, locale, c.Name)
}

// LabelForLocale returns the column header for the requested locale.
func (col Column) LabelForLocale(locale string) string {
	return ResolveLocalizedValue(col.LabelLocalized, locale, col.Label)
}

func normalizeLocaleMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		key = normalizeLocale(key)
		if key == "" || value == "" {
			continue
		}
		normalized[key] = value
	}
	return normalized
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ToLower(locale))
}

func translateOrFallback(ctx context.Context, svc TranslationService, key, locale, fallback string) string {
	if svc != nil {
		if translated, err := svc.Translate(ctx, key, locale, nil); err == nil && translated != "" {
			return translated
		}
	}
	if fallback != "" {
		return fallback
	}
	return key
}

// humanize turns field codes (createdAt, customer.name, subscription_plans) into labels.
func humanize(field string) string {
	words := strings.Split(strcase.ToSnake(strings.ReplaceAll(field, ".", "_")), "_")
	parts := words[:0]
	for _, w := range words {
		if w != "" {
			parts = append(parts, w)
		}
	}
	if len(parts) == 0 {
		return field
	}
	label := strings.Join(parts, " ")
	return strings.ToUpper(label[:1]) + label[1:]
}
