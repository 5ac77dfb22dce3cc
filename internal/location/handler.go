package location

import (
	"net/http"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/httpio"
)

type Handler struct {
	svc *LocationService
	rs  httpio.Responder
}

func NewHandler(svc *LocationService, rs httpio.Responder) *Handler {
	return &Handler{svc: svc, rs: rs}
}

func public(locs ...*entity.Location) {
	for _, l := range locs {
		if l.Owner != nil {
			l.Owner = l.Owner.Public()
		}
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	locs, err := h.svc.GetAll(r.Context(), httpio.Populate(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	public(locs...)
	h.rs.JSON(w, http.StatusOK, locs)
}

// ListByUser serves the locations of the user in the path.
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	locs, err := h.svc.GetAllByUser(r.Context(), id, httpio.Populate(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	public(locs...)
	h.rs.JSON(w, http.StatusOK, locs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	l, err := h.svc.GetByID(r.Context(), id, httpio.Populate(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	public(l)
	h.rs.JSON(w, http.StatusOK, l)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var l entity.Location
	if err := httpio.Decode(r, &l); err != nil {
		h.rs.Logger.Debugw("invalid location payload", "err", err)
		h.rs.Message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	l.ID = 0
	if err := h.svc.Insert(r.Context(), &l); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, &l)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	var l entity.Location
	if err := httpio.Decode(r, &l); err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	l.ID = id
	ok, err := h.svc.Update(r.Context(), &l)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if !ok {
		h.rs.Message(w, http.StatusNotFound, "not found")
		return
	}
	h.rs.JSON(w, http.StatusOK, &l)
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
