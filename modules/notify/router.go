package notify

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router mounts the module's HTTP surface. The websocket handler is
// optional; passing nil leaves the /ws route unmounted.
func Router(h *Handler, ws http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/notification", func(r chi.Router) {
		r.Get("/find/role", h.FindByRole)
		r.Get("/unread/count", h.UnreadCount)
		r.Get("/read", h.MarkAllRead)
		r.Get("/history", h.History)
	})

	r.Route("/email", func(r chi.Router) {
		r.Post("/text", h.SendText)
		r.Post("/html", h.SendHTML)
	})

	if ws != nil {
		r.Handle("/ws", ws)
	}

	return r
}
