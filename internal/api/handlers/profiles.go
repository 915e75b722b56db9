package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/usly-events/server/internal/api/respond"
	"github.com/usly-events/server/internal/domain/profiles"
)

type ProfilesHandler struct {
	Profiles *profiles.Service
}

func NewProfilesHandler(service *profiles.Service) *ProfilesHandler {
	return &ProfilesHandler{Profiles: service}
}

func (h *ProfilesHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}

	profile, err := h.Profiles.GetUser(r.Context(), account.ID)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toUserProfilePayload(profile))
}

type userProfileRequest struct {
	DisplayName *string   `json:"display_name"`
	Bio         *string   `json:"bio"`
	City        *string   `json:"city"`
	Interests   *[]string `json:"interests"`
	AvatarURL   *string   `json:"avatar_url"`
	AgeMin      *int32    `json:"age_min"`
	AgeMax      *int32    `json:"age_max"`
}

func (h *ProfilesHandler) PatchUser(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}

	var req userProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.Profiles.UpdateUser(r.Context(), account.ID, profiles.UserPatch{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		City:        req.City,
		Interests:   req.Interests,
		AvatarURL:   req.AvatarURL,
		AgeMin:      req.AgeMin,
		AgeMax:      req.AgeMax,
	})
	if err != nil {
		writeProfileError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toUserProfilePayload(profile))
}

func (h *ProfilesHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}

	profile, err := h.Profiles.GetPartner(r.Context(), account.ID)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toPartnerProfilePayload(profile))
}

type partnerProfileRequest struct {
	CompanyName  *string `json:"company_name"`
	City         *string `json:"city"`
	Website      *string `json:"website"`
	ContactEmail *string `json:"contact_email"`
	LogoURL      *string `json:"logo_url"`
	Description  *string `json:"description"`
}

func (h *ProfilesHandler) PatchPartner(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}

	var req partnerProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.Profiles.UpdatePartner(r.Context(), account.ID, profiles.PartnerPatch{
		CompanyName:  req.CompanyName,
		City:         req.City,
		Website:      req.Website,
		ContactEmail: req.ContactEmail,
		LogoURL:      req.LogoURL,
		Description:  req.Description,
	})
	if err != nil {
		writeProfileError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toPartnerProfilePayload(profile))
}

func writeProfileError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeValidationError(w, r, err)
	case errors.Is(err, profiles.ErrInvalidAgeRange):
		respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeInvalidAgeRange, err)
	default:
		respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
	}
}
