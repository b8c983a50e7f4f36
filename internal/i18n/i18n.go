package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localeFiles embed.FS

// Message keys
const (
	KeyNewBest           = "score.new_best"
	KeyScoreSaved        = "score.saved"
	KeyGameWon           = "game.won"
	KeyGameLost          = "game.lost"
	KeyMissingFields     = "error.missing_fields"
	KeyInvalidDifficulty = "error.invalid_difficulty"
	KeyInvalidTime       = "error.invalid_time"
	KeyInvalidFID        = "error.invalid_fid"
	KeySaveScore         = "error.save_score"
	KeyFetchScores       = "error.fetch_scores"
	KeyFetchUserScores   = "error.fetch_user_scores"
	KeyInvalidMessage    = "error.invalid_message"
	KeyUnknownMessage    = "error.unknown_message"
	KeyNoIdentity        = "error.no_identity"
	KeyStartGame         = "error.start_game"
	KeyTooManyGames      = "error.too_many_games"
)

// I18n represents the internationalization manager
type I18n struct {
	defaultLang string
	languages   map[string]map[string]string
	mu          sync.RWMutex
}

// New creates a new I18n instance loading every supported language
func New(defaultLang string, supported []string) (*I18n, error) {
	i18n := &I18n{
		defaultLang: defaultLang,
		languages:   make(map[string]map[string]string),
	}

	for _, lang := range supported {
		if err := i18n.LoadLanguage(lang); err != nil {
			return nil, err
		}
	}

	if _, ok := i18n.languages[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q is not loaded", defaultLang)
	}

	return i18n, nil
}

// LoadLanguage loads a specific language file
func (i *I18n) LoadLanguage(lang string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	filename := fmt.Sprintf("locales/%s.json", lang)

	data, err := localeFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read language file %s: %w", filename, err)
	}

	var translations map[string]string
	if err := json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to parse language file %s: %w", filename, err)
	}

	i.languages[lang] = translations
	return nil
}

// T translates a key for the given language
func (i *I18n) T(lang, key string) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	// Try the requested language first
	if translations, ok := i.languages[lang]; ok {
		if translation, exists := translations[key]; exists {
			return translation
		}
	}

	// Fallback to default language
	if lang != i.defaultLang {
		if translations, ok := i.languages[i.defaultLang]; ok {
			if translation, exists := translations[key]; exists {
				return translation
			}
		}
	}

	// Return the key itself if no translation found
	return key
}

// Tf translates a key with format arguments
func (i *I18n) Tf(lang, key string, args ...interface{}) string {
	translation := i.T(lang, key)
	return fmt.Sprintf(translation, args...)
}

// IsSupported reports whether lang has been loaded
func (i *I18n) IsSupported(lang string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.languages[lang]
	return ok
}

// DetectLanguage detects language from Accept-Language header
func (i *I18n) DetectLanguage(acceptLang string) string {
	if acceptLang == "" {
		return i.defaultLang
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	// Find the first supported language
	for _, lang := range parseAcceptLanguage(acceptLang) {
		if _, ok := i.languages[lang]; ok {
			return lang
		}

		// Try language without region (e.g., "fr" from "fr-CA")
		if idx := strings.Index(lang, "-"); idx != -1 {
			if _, ok := i.languages[lang[:idx]]; ok {
				return lang[:idx]
			}
		}
	}

	return i.defaultLang
}

// parseAcceptLanguage parses the Accept-Language header
func parseAcceptLanguage(acceptLang string) []string {
	var languages []string

	parts := strings.Split(acceptLang, ",")
	for _, part := range parts {
		lang := strings.TrimSpace(part)
		if idx := strings.Index(lang, ";"); idx != -1 {
			lang = lang[:idx]
		}
		lang = strings.TrimSpace(lang)
		if lang != "" {
			languages = append(languages, lang)
		}
	}

	return languages
}
