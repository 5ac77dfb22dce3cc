package item

import (
	"context"
	"net/http"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/httpio"
)

type Handler struct {
	svc *ItemService
	rs  httpio.Responder
}

func NewHandler(svc *ItemService, rs httpio.Responder) *Handler {
	return &Handler{svc: svc, rs: rs}
}

func public(items ...*entity.Item) {
	for _, it := range items {
		if it.Owner != nil {
			it.Owner = it.Owner.Public()
		}
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.GetAll(r.Context(), httpio.Populate(r))
	h.writeList(w, r, items, err)
}

func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	items, err := h.svc.GetAllByUser(r.Context(), id, httpio.Populate(r))
	h.writeList(w, r, items, err)
}

func (h *Handler) ListByLocation(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	items, err := h.svc.GetAllByLocation(r.Context(), id, httpio.Populate(r))
	h.writeList(w, r, items, err)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, items []*entity.Item, err error) {
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	public(items...)
	h.rs.JSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	it, err := h.svc.GetByID(r.Context(), id, httpio.Populate(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	public(it)
	h.rs.JSON(w, http.StatusOK, it)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var it entity.Item
	if err := httpio.Decode(r, &it); err != nil {
		h.rs.Logger.Debugw("invalid item payload", "err", err)
		h.rs.Message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	it.ID = 0
	if err := h.svc.Insert(r.Context(), &it); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, &it)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	var it entity.Item
	if err := httpio.Decode(r, &it); err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	it.ID = id
	ok, err := h.svc.Update(r.Context(), &it)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if !ok {
		h.rs.Message(w, http.StatusNotFound, "not found")
		return
	}
	h.rs.JSON(w, http.StatusOK, &it)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Delete, http.StatusNoContent)
}

func (h *Handler) BeginUsage(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.BeginUsage, http.StatusNoContent)
}

func (h *Handler) EndUsage(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.EndUsage, http.StatusNoContent)
}

// mutate runs an id-addressed operation that reports false for unknown ids.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64) (bool, error), status int) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	ok, err := op(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if !ok {
		h.rs.Message(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(status)
}

func (h *Handler) Usages(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.PathID(r)
	if err != nil {
		h.rs.Message(w, http.StatusBadRequest, "invalid id")
		return
	}
	if _, err := h.svc.GetByID(r.Context(), id, entity.None); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	usages, err := h.svc.Usages(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	inUse, err := h.svc.InUse(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, map[string]any{"in_use": inUse, "usages": usages})
}
