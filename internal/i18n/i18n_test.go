package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranslator(t *testing.T) *I18n {
	t.Helper()

	tr, err := New("en", []string{"en", "fr", "es"})
	require.NoError(t, err)
	return tr
}

func TestNew(t *testing.T) {
	t.Run("Unknown language file", func(t *testing.T) {
		_, err := New("en", []string{"en", "xx"})

		assert.Error(t, err)
	})

	t.Run("Default language must be loaded", func(t *testing.T) {
		_, err := New("de", []string{"en"})

		assert.Error(t, err)
	})
}

func TestTranslate(t *testing.T) {
	tr := newTranslator(t)

	assert.Equal(t, "New best score!", tr.T("en", KeyNewBest))
	assert.Equal(t, "Nouveau record !", tr.T("fr", KeyNewBest))
	assert.Equal(t, "Score saved", tr.T("de", KeyScoreSaved))
	assert.Equal(t, "missing.key", tr.T("fr", "missing.key"))
	assert.Equal(t, "You won in 42s!", tr.Tf("en", KeyGameWon, 42))
	assert.Equal(t, "¡Ganaste en 7s!", tr.Tf("es", KeyGameWon, 7))
}

func TestLocalesAreComplete(t *testing.T) {
	// Given: English as the reference locale
	tr := newTranslator(t)
	reference := tr.languages["en"]

	// Then: every other locale translates every key
	for _, lang := range []string{"fr", "es"} {
		for key := range reference {
			_, ok := tr.languages[lang][key]
			assert.True(t, ok, "%s is missing %s", lang, key)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tr := newTranslator(t)

	assert.Equal(t, "en", tr.DetectLanguage(""))
	assert.Equal(t, "fr", tr.DetectLanguage("fr-CA,fr;q=0.9,en;q=0.8"))
	assert.Equal(t, "es", tr.DetectLanguage("de-DE, es;q=0.5"))
	assert.Equal(t, "en", tr.DetectLanguage("ja"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tr := newTranslator(t)

	router := gin.New()
	router.Use(Middleware(tr))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetLanguage(c))
	})

	cases := []struct {
		name   string
		target string
		header http.Header
		want   string
	}{
		{"query parameter", "/?lang=es", nil, "es"},
		{"unsupported query parameter", "/?lang=xx", http.Header{"Accept-Language": {"fr"}}, "fr"},
		{"cookie", "/", http.Header{"Cookie": {"lang=fr"}}, "fr"},
		{"header", "/", http.Header{"Accept-Language": {"es-MX"}}, "es"},
		{"default", "/", nil, "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			for k, v := range tc.header {
				req.Header[k] = v
			}

			router.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}
