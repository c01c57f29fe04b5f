package i18n

import (
	"fmt"
	"strings"

	"github.com/ctv-ledger/internal/constants"

	"github.com/gin-gonic/gin"
)

// T 按语言获取文案，未命中时回退默认语言，仍未命中则返回 key 本身。
func T(locale, key string) string {
	locale = normalizeLocale(locale)
	if catalog, ok := catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if locale != constants.LocaleDefault {
		if msg, ok := catalogs[constants.LocaleDefault][key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf 按语言获取带参数的文案。
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// ResolveLocale 解析请求语言，优先 query，其次 Accept-Language 头。
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return constants.LocaleDefault
	}
	if locale := normalizeLocale(c.Query("lang")); isSupported(locale) {
		return locale
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := normalizeLocale(tag); isSupported(locale) {
			return locale
		}
	}
	return constants.LocaleDefault
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	switch {
	case locale == "":
		return constants.LocaleDefault
	case locale == "zh-tw" || locale == "zh-hant" || strings.HasPrefix(locale, "zh-hant-"):
		return constants.LocaleZhTW
	case strings.HasPrefix(locale, "zh"):
		return constants.LocaleZhCN
	case strings.HasPrefix(locale, "en"):
		return constants.LocaleEnUS
	default:
		return locale
	}
}

func isSupported(locale string) bool {
	for _, supported := range constants.SupportedLocales {
		if locale == supported {
			return true
		}
	}
	return false
}
