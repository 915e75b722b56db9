package handlers

import (
	"net/http"

	"github.com/usly-events/server/internal/api/respond"
	"github.com/usly-events/server/internal/domain/accounts"
)

type legalDocument struct {
	Document string `json:"document"`
	Version  string `json:"version"`
	URL      string `json:"url"`
}

// LegalHandler reports the legal document versions registration binds to.
type LegalHandler struct {
	BaseURL string
}

func NewLegalHandler(baseURL string) *LegalHandler {
	return &LegalHandler{BaseURL: baseURL}
}

func (h *LegalHandler) Terms(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, legalDocument{
		Document: "terms",
		Version:  accounts.TermsVersion,
		URL:      h.BaseURL + "/legal/terms-" + accounts.TermsVersion + ".html",
	})
}

func (h *LegalHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, legalDocument{
		Document: "privacy",
		Version:  accounts.PrivacyVersion,
		URL:      h.BaseURL + "/legal/privacy-" + accounts.PrivacyVersion + ".html",
	})
}
