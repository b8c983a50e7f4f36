package i18n

import (
	"github.com/gin-gonic/gin"
)

const (
	// LanguageKey is the context key for storing the current language
	LanguageKey = "language"
	// CookieName is the name of the language cookie
	CookieName = "lang"
)

// Middleware creates a middleware function for language detection and setting
func Middleware(i18n *I18n) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := detectLanguage(c, i18n)
		c.Set(LanguageKey, lang)
		c.Next()
	}
}

// detectLanguage detects the user's preferred language from multiple sources
func detectLanguage(c *gin.Context, i18n *I18n) string {
	// 1. Check URL parameter first (highest priority)
	if lang := c.Query("lang"); lang != "" && i18n.IsSupported(lang) {
		setLanguageCookie(c, lang)
		return lang
	}

	// 2. Check cookie
	if cookie, err := c.Cookie(CookieName); err == nil && i18n.IsSupported(cookie) {
		return cookie
	}

	// 3. Check Accept-Language header
	return i18n.DetectLanguage(c.GetHeader("Accept-Language"))
}

// setLanguageCookie sets the language preference cookie
func setLanguageCookie(c *gin.Context, lang string) {
	c.SetCookie(CookieName, lang, 365*24*3600, "/", "", false, false)
}

// GetLanguage returns the current language from context
func GetLanguage(c *gin.Context) string {
	if lang, exists := c.Get(LanguageKey); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return "en" // fallback
}
