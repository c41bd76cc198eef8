package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/service"
)

// Discussions hands out the session of a book.
type Discussions interface {
	Get(ctx context.Context, bookID model.ID) (*service.Session, service.Result)
	Forget(bookID model.ID)
}

type Handler struct {
	discussions Discussions
	log         zerolog.Logger
}

func New(d Discussions, log zerolog.Logger) *Handler {
	return &Handler{discussions: d, log: log}
}

type errorResponse struct {
	Error      string            `json:"error"`
	Kind       string            `json:"kind"`
	Discussion *model.Discussion `json:"discussion,omitempty"`
}

type mutationResponse struct {
	Applied    bool             `json:"applied"`
	Comment    *model.Comment   `json:"comment,omitempty"`
	Discussion model.Discussion `json:"discussion"`
}

type replyTargetRequest struct {
	CommentID model.ID `json:"comment_id"`
}

type draftRequest struct {
	Content *string `json:"content"`
}

type reactRequest struct {
	Reaction model.Reaction `json:"reaction"`
}

func (h *Handler) GetDiscussion(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, stdhttp.StatusOK, sess.View())
}

func (h *Handler) Reload(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeResult(w, r, sess, sess.Reload(r.Context()), stdhttp.StatusOK, nil)
}

// CloseDiscussion drops the book's session. The next request opens it again
// with a fresh book, viewer and comment set.
func (h *Handler) CloseDiscussion(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	bookID := model.ID(chi.URLParam(r, "bookID"))
	if bookID == "" {
		writeError(w, r, stdhttp.StatusBadRequest, "invalid book id", service.KindValidation)
		return
	}
	h.discussions.Forget(bookID)
	w.WriteHeader(stdhttp.StatusNoContent)
}

func (h *Handler) SetReplyTarget(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req replyTargetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, stdhttp.StatusBadRequest, "bad json", service.KindValidation)
		return
	}
	if strings.TrimSpace(string(req.CommentID)) == "" {
		writeError(w, r, stdhttp.StatusBadRequest, "comment_id is required", service.KindValidation)
		return
	}

	sess.Composer.SetReplyTarget(req.CommentID)
	writeJSON(w, r, stdhttp.StatusOK, sess.View())
}

func (h *Handler) ClearReplyTarget(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Composer.ClearReplyTarget()
	writeJSON(w, r, stdhttp.StatusOK, sess.View())
}

func (h *Handler) SetDraft(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req draftRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.Content == nil {
		writeError(w, r, stdhttp.StatusBadRequest, "bad json", service.KindValidation)
		return
	}
	sess.Composer.SetText(*req.Content)
	writeJSON(w, r, stdhttp.StatusOK, map[string]any{"content": sess.Composer.Text()})
}

// CreateComment submits the draft. A content field in the body replaces the
// draft first.
func (h *Handler) CreateComment(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req draftRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, stdhttp.StatusBadRequest, "bad json", service.KindValidation)
		return
	}
	if req.Content != nil {
		sess.Composer.SetText(*req.Content)
	}

	created, res := sess.Composer.Submit(r.Context())
	var comment *model.Comment
	if res.OK() {
		comment = &created
	}
	h.writeResult(w, r, sess, res, stdhttp.StatusCreated, comment)
}

func (h *Handler) React(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req reactRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, stdhttp.StatusBadRequest, "bad json", service.KindValidation)
		return
	}

	res := sess.Reactions.React(r.Context(), commentID(r), req.Reaction)
	h.writeResult(w, r, sess, res, stdhttp.StatusOK, nil)
}

func (h *Handler) TogglePin(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	res := sess.Moderation.TogglePin(r.Context(), commentID(r))
	h.writeResult(w, r, sess, res, stdhttp.StatusOK, nil)
}

// DeleteComment requires confirm=true; the query parameter is the viewer's
// answer to the confirmation prompt.
func (h *Handler) DeleteComment(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	confirm := service.ConfirmFunc(func(context.Context, model.Comment) bool { return confirmed })

	res := sess.Moderation.Delete(r.Context(), commentID(r), confirm)
	h.writeResult(w, r, sess, res, stdhttp.StatusOK, nil)
}

func (h *Handler) session(w stdhttp.ResponseWriter, r *stdhttp.Request) (*service.Session, bool) {
	bookID := model.ID(chi.URLParam(r, "bookID"))
	if bookID == "" {
		writeError(w, r, stdhttp.StatusBadRequest, "invalid book id", service.KindValidation)
		return nil, false
	}

	sess, res := h.discussions.Get(r.Context(), bookID)
	if sess == nil {
		msg := "book unavailable"
		if res.Err != nil {
			msg = res.Err.Error()
		}
		writeError(w, r, statusFor(res.Kind), msg, res.Kind)
		return nil, false
	}
	return sess, true
}

func (h *Handler) writeResult(w stdhttp.ResponseWriter, r *stdhttp.Request, sess *service.Session, res service.Result, okStatus int, comment *model.Comment) {
	view := sess.View()

	switch res.Kind {
	case service.KindOK:
		writeJSON(w, r, okStatus, mutationResponse{Applied: true, Comment: comment, Discussion: view})
	case service.KindSkipped:
		writeJSON(w, r, stdhttp.StatusOK, mutationResponse{Applied: false, Discussion: view})
	default:
		msg := res.Kind.String()
		if res.Err != nil {
			msg = res.Err.Error()
		}
		writeJSON(w, r, statusFor(res.Kind), errorResponse{Error: msg, Kind: res.Kind.String(), Discussion: &view})
	}
}

func statusFor(k service.Kind) int {
	switch k {
	case service.KindOK, service.KindSkipped:
		return stdhttp.StatusOK
	case service.KindValidation:
		return stdhttp.StatusBadRequest
	case service.KindAuth:
		return stdhttp.StatusUnauthorized
	case service.KindForbidden:
		return stdhttp.StatusForbidden
	case service.KindNotFound:
		return stdhttp.StatusNotFound
	case service.KindStale:
		return stdhttp.StatusConflict
	case service.KindUnconfirmed:
		return stdhttp.StatusPreconditionRequired
	default:
		return stdhttp.StatusBadGateway
	}
}

func commentID(r *stdhttp.Request) model.ID {
	return model.ID(chi.URLParam(r, "commentID"))
}

func writeError(w stdhttp.ResponseWriter, r *stdhttp.Request, status int, msg string, k service.Kind) {
	writeJSON(w, r, status, errorResponse{Error: msg, Kind: k.String()})
}

func writeJSON(w stdhttp.ResponseWriter, r *stdhttp.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
