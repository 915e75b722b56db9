package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/usly-events/server/internal/api/respond"
	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/domain/accounts"
)

type AuthHandler struct {
	Accounts *accounts.Service
}

func NewAuthHandler(service *accounts.Service) *AuthHandler {
	return &AuthHandler{Accounts: service}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"date_of_birth"`
	Role        string `json:"role"`
	AcceptTerms bool   `json:"accept_terms"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeValidationError, err,
			respond.WithMessage("date_of_birth must be YYYY-MM-DD"))
		return
	}

	account, err := h.Accounts.Register(r.Context(), accounts.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: dob,
		Role:        req.Role,
		AcceptTerms: req.AcceptTerms,
	}, audit.OriginFromRequest(r))
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toAccountPayload(account))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string         `json:"token"`
	Account accountPayload `json:"account"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, token, err := h.Accounts.Authenticate(r.Context(), accounts.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	}, audit.OriginFromRequest(r))
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, loginResponse{Token: token, Account: toAccountPayload(account)})
}

// Logout records the logout in the audit trail. Tokens are stateless, so
// there is nothing to revoke server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}

	h.Accounts.Logout(r.Context(), account, audit.OriginFromRequest(r))
	respond.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, toAccountPayload(account))
}

func writeAccountError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeValidationError(w, r, err)
	case errors.Is(err, accounts.ErrEmailTaken):
		respond.Error(w, r, http.StatusConflict, respond.CodeEmailAlreadyExists, err)
	case errors.Is(err, accounts.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, respond.CodeInvalidCredentials, err)
	case errors.Is(err, accounts.ErrAccountInactive):
		respond.Error(w, r, http.StatusForbidden, respond.CodeAccountInactive, err)
	case errors.Is(err, accounts.ErrAgeTooLow):
		respond.Error(w, r, http.StatusForbidden, respond.CodeAgeTooLow, err)
	case errors.Is(err, accounts.ErrTermsRequired):
		respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeTermsRequired, err)
	case errors.Is(err, accounts.ErrInvalidRole):
		respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeValidationError, err,
			respond.WithMessage("role must be user or partner"))
	default:
		respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
	}
}
