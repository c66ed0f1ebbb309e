package users

import (
	"errors"
	"net/http"

	"foodgram/apperr"
	"foodgram/metrics"
	"foodgram/mq"
	"foodgram/store"
	"foodgram/structs"
	"foodgram/utils"

	"github.com/julienschmidt/httprouter"
)

// Subscriptions handles GET /api/users/subscriptions/
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	viewerID := utils.GetUserIDFromRequest(r)
	page := h.Paginator.Parse(r)
	ids, total, err := h.Store.Subscriptions.Targets(r.Context(), viewerID, page.Window())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	targets, err := h.Store.Users.GetMany(r.Context(), ids)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	limit := recipesLimit(r)
	out := make([]structs.Subscription, 0, len(targets))
	for i := range targets {
		sub, err := h.Present.Subscription(r.Context(), viewerID, &targets[i], limit)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		out = append(out, sub)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPageResponse(r, page, total, out))
}

// Subscribe handles POST /api/users/{id}/subscribe/
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	target, err := h.loadUser(r, ps)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	viewerID := utils.GetUserIDFromRequest(r)
	if target.ID == viewerID {
		metrics.RecordMembershipChange("subscription", "add", "invalid")
		utils.RespondWithAppError(w, r, apperr.Validation("You cannot subscribe to yourself."))
		return
	}
	if err := h.Store.Subscriptions.Add(r.Context(), viewerID, target.ID); err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.RecordMembershipChange("subscription", "add", "conflict")
			err = apperr.Conflict("You are already subscribed to this user.")
		}
		utils.RespondWithAppError(w, r, err)
		return
	}
	metrics.RecordMembershipChange("subscription", "add", "ok")
	mq.Emit(r.Context(), h.Events, mq.UserSubscribed, viewerID, target.ID)

	out, err := h.Present.Subscription(r.Context(), viewerID, target, recipesLimit(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, out)
}

// Unsubscribe handles DELETE /api/users/{id}/subscribe/
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	target, err := h.loadUser(r, ps)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	viewerID := utils.GetUserIDFromRequest(r)
	if err := h.Store.Subscriptions.Remove(r.Context(), viewerID, target.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordMembershipChange("subscription", "remove", "missing")
			err = apperr.MissingMembership("Subscription")
		}
		utils.RespondWithAppError(w, r, err)
		return
	}
	metrics.RecordMembershipChange("subscription", "remove", "ok")
	mq.Emit(r.Context(), h.Events, mq.UserUnsubscribed, viewerID, target.ID)
	w.WriteHeader(http.StatusNoContent)
}
