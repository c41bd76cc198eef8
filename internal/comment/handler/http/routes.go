package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MyNameIsWhaaat/bookcomments/internal/logger"
)

func (h *Handler) Routes() stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	})

	r.Route("/books/{bookID}", func(r chi.Router) {
		r.Get("/discussion", h.GetDiscussion)
		r.Delete("/discussion", h.CloseDiscussion)
		r.Post("/discussion/reload", h.Reload)
		r.Put("/discussion/reply-target", h.SetReplyTarget)
		r.Delete("/discussion/reply-target", h.ClearReplyTarget)
		r.Put("/discussion/draft", h.SetDraft)

		r.Post("/comments", h.CreateComment)
		r.Post("/comments/{commentID}/react", h.React)
		r.Post("/comments/{commentID}/pin", h.TogglePin)
		r.Delete("/comments/{commentID}", h.DeleteComment)
	})

	return r
}
