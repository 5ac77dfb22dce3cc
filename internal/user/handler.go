package user

import (
	"net/http"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/httpio"
)

// Handler exposes HTTP endpoints for user operations.
type Handler struct {
	svc             *UserService
	rs              httpio.Responder
	defaultLanguage string
}

// NewHandler returns a user handler. defaultLanguage is filled in on
// registration when the payload carries none.
func NewHandler(svc *UserService, rs httpio.Responder, defaultLanguage string) *Handler {
	return &Handler{svc: svc, rs: rs, defaultLanguage: defaultLanguage}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.GetAll(r.Context(), httpio.Populate(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	out := make([]*entity.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	h.rs.JSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	u, err := h.svc.GetByID(r.Context(), id, httpio.Populate(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, u.Public())
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var u entity.User
	if err := httpio.Decode(r, &u); err != nil {
		h.rs.Logger.Debugw("invalid user payload", "err", err)
		h.rs.Message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	u.ID = 0
	if u.Language == "" {
		u.Language = h.defaultLanguage
	}
	if err := h.svc.Insert(r.Context(), &u); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, u.Public())
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	var u entity.User
	if err := httpio.Decode(r, &u); err != nil {
		h.rs.Logger.Debugw("invalid user payload", "err", err)
		h.rs.Message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	u.ID = id
	ok, err := h.svc.Update(r.Context(), &u)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if !ok {
		h.rs.Message(w, http.StatusNotFound, "not found")
		return
	}
	h.rs.JSON(w, http.StatusOK, u.Public())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	ok, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if !ok {
		h.rs.Message(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoginRequest login payload.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login checks credentials only; sessions are left to the caller.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpio.Decode(r, &req); err != nil {
		h.rs.Logger.Debugw("invalid login payload", "err", err)
		h.rs.Message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	ok, err := h.svc.ValidateLogin(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if !ok {
		h.rs.Logger.Debugw("login failed", "identifier", req.Identifier)
		h.rs.Message(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	u, err := h.svc.GetByUsernameEmail(r.Context(), req.Identifier)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, u.Public())
}
