package handlers

import (
	"errors"
	"net/http"

	"github.com/usly-events/server/internal/api/respond"
	"github.com/usly-events/server/internal/domain/profiles"
	"github.com/usly-events/server/internal/media"
)

// UploadsHandler accepts image uploads and returns the public URL. Avatar
// and logo uploads also persist the URL on the caller's profile; event
// cover URLs are stored by the client through the event endpoints.
type UploadsHandler struct {
	Store    *media.Store
	Profiles *profiles.Service
	BaseURL  string
	MaxBytes int64
}

func NewUploadsHandler(store *media.Store, profilesService *profiles.Service, baseURL string, maxBytes int64) *UploadsHandler {
	return &UploadsHandler{Store: store, Profiles: profilesService, BaseURL: baseURL, MaxBytes: maxBytes}
}

func (h *UploadsHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}
	url, ok := h.save(w, r, media.KindAvatar)
	if !ok {
		return
	}
	if _, err := h.Profiles.UpdateUser(r.Context(), account.ID, profiles.UserPatch{AvatarURL: &url}); err != nil {
		respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *UploadsHandler) Logo(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}
	url, ok := h.save(w, r, media.KindLogo)
	if !ok {
		return
	}
	if _, err := h.Profiles.UpdatePartner(r.Context(), account.ID, profiles.PartnerPatch{LogoURL: &url}); err != nil {
		respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *UploadsHandler) EventCover(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustAccount(w, r); !ok {
		return
	}
	url, ok := h.save(w, r, media.KindEventCover)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]string{"url": url})
}

// save stores the uploaded file and returns its public URL. On failure it
// writes the error response itself and reports ok=false.
func (h *UploadsHandler) save(w http.ResponseWriter, r *http.Request, kind media.Kind) (string, bool) {
	// a little slack over the file cap for multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+(64<<10))
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respond.Error(w, r, http.StatusRequestEntityTooLarge, respond.CodePayloadTooLarge, err)
			return "", false
		}
		respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeValidationError, err,
			respond.WithMessage(`multipart field "file" is required`))
		return "", false
	}
	defer file.Close()

	path, err := h.Store.Save(file, header, kind)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrTooLarge):
			respond.Error(w, r, http.StatusRequestEntityTooLarge, respond.CodePayloadTooLarge, err)
		case errors.Is(err, media.ErrUnsupportedType):
			respond.Error(w, r, http.StatusUnsupportedMediaType, respond.CodeUnsupportedMedia, err)
		default:
			respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
		}
		return "", false
	}

	return h.BaseURL + "/uploads/static" + path, true
}
