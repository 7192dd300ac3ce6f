package validation

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used for unknown or empty locale codes.
const DefaultLocale = "en"

// Translator resolves message keys of the form "validation.<keyword>". A
// missing key or an error falls back to the built-in dictionaries.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

var supported = []language.Tag{
	language.English,
	language.German,
	language.Spanish,
	language.French,
	language.Chinese,
}

var dictionaries = map[string]map[string]string{
	"en": {
		"required":         "Missing required field '{missingProperty}'",
		"minimum":          "Must be at least {limit}",
		"maximum":          "Must be at most {limit}",
		"exclusiveMinimum": "Must be greater than {limit}",
		"exclusiveMaximum": "Must be less than {limit}",
		"minLength":        "Must be at least {limit} characters",
		"maxLength":        "Must be at most {limit} characters",
		"minItems":         "Must have at least {limit} items",
		"maxItems":         "Must have at most {limit} items",
		"pattern":          "Must match pattern {pattern}",
		"type":             "Must be of type {type}",
		"format":           "Must be a valid {format}",
		"enum":             "Must be one of the allowed values",
	},
	"de": {
		"required": "Pflichtfeld fehlt",
		"minimum":  "Wert ist zu klein",
		"maximum":  "Wert ist zu groß",
		"pattern":  "Ungültiges Format",
		"type":     "Falscher Typ",
	},
	"es": {
		"required": "Falta un campo obligatorio",
		"minimum":  "Valor demasiado bajo",
		"maximum":  "Valor demasiado alto",
		"pattern":  "Formato inválido",
		"type":     "Tipo incorrecto",
	},
	"fr": {
		"required": "Champ obligatoire manquant",
		"minimum":  "Valeur trop petite",
		"maximum":  "Valeur trop grande",
		"pattern":  "Format invalide",
		"type":     "Type incorrect",
	},
	"zh": {
		"required": "缺少必填字段",
		"minimum":  "值太小",
		"maximum":  "值太大",
		"pattern":  "格式无效",
		"type":     "类型不正确",
	},
}

// Catalog picks error messages per locale.
type Catalog struct {
	matcher    language.Matcher
	translator Translator
}

// NewCatalog returns a catalog backed by the built-in dictionaries. When t is
// non-nil it is consulted first.
func NewCatalog(t Translator) *Catalog {
	return &Catalog{matcher: language.NewMatcher(supported), translator: t}
}

// Locale maps a locale code such as "de-CH" or "fr" onto one of the built-in
// dictionaries. Unknown or malformed codes give DefaultLocale.
func (c *Catalog) Locale(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLocale
	}
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLocale
	}
	_, idx, confidence := c.matcher.Match(tag)
	if confidence == language.No {
		return DefaultLocale
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Message formats e in the given locale. A keyword missing from the locale's
// dictionary falls back to the validator's own message, then to English.
func (c *Catalog) Message(locale string, e Error) string {
	locale = c.Locale(locale)
	if c.translator != nil {
		msg, err := c.translator.Translate(locale, "validation."+e.Keyword, e.Params)
		if err == nil && strings.TrimSpace(msg) != "" {
			return interpolate(msg, e.Params)
		}
	}
	if tmpl, ok := dictionaries[locale][e.Keyword]; ok {
		return interpolate(tmpl, e.Params)
	}
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	if tmpl, ok := dictionaries[DefaultLocale][e.Keyword]; ok {
		return interpolate(tmpl, e.Params)
	}
	return "Invalid value"
}

func interpolate(tmpl string, params map[string]any) string {
	if len(params) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(params)*2)
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", formatParam(value))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func formatParam(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatParam(item)
		}
		return strings.Join(parts, ", ")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}
