package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
)

const maxErrorBody = 512

// Client talks to the book service that owns comments, books and accounts.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (c *Client) GetBook(ctx context.Context, bookID model.ID) (model.Book, error) {
	var b model.Book
	err := c.do(ctx, "get book", http.MethodGet, "/books/"+esc(bookID), false, nil, &b)
	return b, err
}

type verifyResponse struct {
	User model.Viewer `json:"user"`
}

// Verify resolves the identity behind the current token.
func (c *Client) Verify(ctx context.Context) (model.Viewer, error) {
	var res verifyResponse
	if err := c.do(ctx, "verify", http.MethodGet, "/auth/verify", true, nil, &res); err != nil {
		return model.Viewer{}, err
	}
	return res.User, nil
}

func (c *Client) ListComments(ctx context.Context, bookID model.ID) ([]model.Comment, error) {
	var out []model.Comment
	if err := c.do(ctx, "list comments", http.MethodGet, "/books/"+esc(bookID)+"/comments", false, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Comment{}
	}
	return out, nil
}

type createRequest struct {
	Content  string    `json:"content"`
	ParentID *model.ID `json:"parentId"`
}

func (c *Client) CreateComment(ctx context.Context, bookID model.ID, content string, parentID *model.ID) (model.Comment, error) {
	var out model.Comment
	err := c.do(ctx, "create comment", http.MethodPost, "/books/"+esc(bookID)+"/comments", true,
		createRequest{Content: content, ParentID: parentID}, &out)
	return out, err
}

type reactRequest struct {
	Reaction model.Reaction `json:"reaction"`
}

func (c *Client) React(ctx context.Context, commentID model.ID, kind model.Reaction) (model.Reactions, error) {
	var out model.Reactions
	err := c.do(ctx, "react", http.MethodPost, "/comments/"+esc(commentID)+"/react", true,
		reactRequest{Reaction: kind}, &out)
	return out, err
}

type pinResponse struct {
	Pinned bool `json:"is_pinned"`
}

func (c *Client) TogglePin(ctx context.Context, commentID model.ID) (bool, error) {
	var out pinResponse
	err := c.do(ctx, "toggle pin", http.MethodPost, "/comments/"+esc(commentID)+"/pin", true,
		struct{}{}, &out)
	return out.Pinned, err
}

func (c *Client) DeleteComment(ctx context.Context, commentID model.ID) error {
	return c.do(ctx, "delete comment", http.MethodDelete, "/comments/"+esc(commentID), true, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, auth bool, in, out any) error {
	var token string
	if auth {
		t, err := c.tokens.Token()
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("%w: read token: %v", ErrAuth, err)}
		}
		if t == "" {
			return &Error{Op: op, Err: ErrNoToken}
		}
		token = t
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return transportErr(op, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return statusErr(op, res.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return transportErr(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func esc(id model.ID) string {
	return url.PathEscape(string(id))
}
