// Package i18n translates the user-facing messages of the quote API.
package i18n

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	// DefaultLocale is used when the client asks for nothing or for an unsupported language.
	DefaultLocale = "en"
	// AcceptLanguageHeader is the HTTP header name for language preference.
	AcceptLanguageHeader = "Accept-Language"
)

var (
	defaultTranslator *Translator
	translatorOnce    sync.Once
)

// Translator looks messages up by key and locale.
type Translator struct {
	messages map[string]map[string]string
	locales  []string
	matcher  language.Matcher
}

// NewTranslator creates a translator with the built-in catalogue. The default
// locale is listed first so the matcher falls back to it.
func NewTranslator() *Translator {
	locales := []string{DefaultLocale}
	for locale := range catalogue {
		if locale != DefaultLocale {
			locales = append(locales, locale)
		}
	}
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = language.Make(l)
	}
	return &Translator{messages: catalogue, locales: locales, matcher: language.NewMatcher(tags)}
}

// GetTranslator returns the process-wide translator.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Translate returns the message for key in locale, then in DefaultLocale,
// and finally the key itself.
func (t *Translator) Translate(key, locale string) string {
	if msg, ok := t.messages[locale][key]; ok {
		return msg
	}
	if msg, ok := t.messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Supported reports whether locale has a catalogue.
func (t *Translator) Supported(locale string) bool {
	_, ok := t.messages[locale]
	return ok
}

// Match resolves an Accept-Language value, quality weights included, to a
// catalogue locale. Unparseable or unmatched headers give DefaultLocale.
func (t *Translator) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return t.locales[idx]
}

// GetLocale returns the catalogue locale for the request's Accept-Language header.
func GetLocale(c *gin.Context) string {
	return GetTranslator().Match(c.GetHeader(AcceptLanguageHeader))
}

var catalogue = map[string]map[string]string{
	"en": {
		ErrKeyInvalidRequest:      "Invalid request",
		ErrKeyInvalidRequestBody:  "Invalid request body",
		ErrKeyInternalError:       "An unexpected error occurred",
		ErrKeyUnauthorized:        "Unauthorized",
		ErrKeyAPIKeyRequired:      "API key is required",
		ErrKeyInvalidAPIKey:       "Invalid API key",
		ErrKeyNotFound:            "Not found",
		ErrKeyRateLimitExceeded:   "Too many requests, please try again later",
		ErrKeyTimeout:             "The request took too long",
		ErrKeyServiceUnavailable:  "Service temporarily unavailable",
		ErrKeyValidation:          "One or more fields are invalid",
		ErrKeyUnsupportedMaterial: "The material is not supported",
		ErrKeyUnsupportedProcess:  "The manufacturing process is not supported",
		ErrKeyPriceLimit:          "The price violates a pricing limit",
		ErrKeyQuoteNotFound:       "Quote not found",
		ErrKeyStorageDisabled:     "Persistent storage is not configured",
	},
	"pt": {
		ErrKeyInvalidRequest:      "Requisição inválida",
		ErrKeyInvalidRequestBody:  "Corpo da requisição inválido",
		ErrKeyInternalError:       "Ocorreu um erro inesperado",
		ErrKeyUnauthorized:        "Não autorizado",
		ErrKeyAPIKeyRequired:      "Chave de API é obrigatória",
		ErrKeyInvalidAPIKey:       "Chave de API inválida",
		ErrKeyNotFound:            "Não encontrado",
		ErrKeyRateLimitExceeded:   "Muitas requisições, tente novamente mais tarde",
		ErrKeyTimeout:             "A requisição demorou demais",
		ErrKeyServiceUnavailable:  "Serviço temporariamente indisponível",
		ErrKeyValidation:          "Um ou mais campos são inválidos",
		ErrKeyUnsupportedMaterial: "O material não é suportado",
		ErrKeyUnsupportedProcess:  "O processo de fabricação não é suportado",
		ErrKeyPriceLimit:          "O preço viola um limite de precificação",
		ErrKeyQuoteNotFound:       "Orçamento não encontrado",
		ErrKeyStorageDisabled:     "O armazenamento persistente não está configurado",
	},
	"nl": {
		ErrKeyInvalidRequest:      "Ongeldig verzoek",
		ErrKeyInvalidRequestBody:  "Ongeldige aanvraag body",
		ErrKeyInternalError:       "Er is een onverwachte fout opgetreden",
		ErrKeyUnauthorized:        "Niet geautoriseerd",
		ErrKeyAPIKeyRequired:      "API-sleutel is vereist",
		ErrKeyInvalidAPIKey:       "Ongeldige API-sleutel",
		ErrKeyNotFound:            "Niet gevonden",
		ErrKeyRateLimitExceeded:   "Te veel verzoeken, probeer het later opnieuw",
		ErrKeyTimeout:             "Het verzoek duurde te lang",
		ErrKeyServiceUnavailable:  "Dienst tijdelijk niet beschikbaar",
		ErrKeyValidation:          "Een of meer velden zijn ongeldig",
		ErrKeyUnsupportedMaterial: "Het materiaal wordt niet ondersteund",
		ErrKeyUnsupportedProcess:  "Het productieproces wordt niet ondersteund",
		ErrKeyPriceLimit:          "De prijs overschrijdt een prijslimiet",
		ErrKeyQuoteNotFound:       "Offerte niet gevonden",
		ErrKeyStorageDisabled:     "Permanente opslag is niet geconfigureerd",
	},
}
