package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"yatube/internal/auth"
	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/store"
)

// Every page context embeds pageData so the layout can show the nav.
type pageData struct {
	User *models.User
}

type feedPage struct {
	pageData
	Page *pagination.Page[models.Post]
}

type groupPage struct {
	pageData
	Group *models.Group
	Page  *pagination.Page[models.Post]
}

type profilePage struct {
	pageData
	Author    *models.User
	PostCount int
	Following bool
	Page      *pagination.Page[models.Post]
}

type detailPage struct {
	pageData
	Post            *models.Post
	AuthorPostCount int
	CanEdit         bool
	Comments        []models.Comment
	CommentField    forms.Field
	CommentForm     *forms.CommentForm
}

type postFields struct {
	Text  forms.Field
	Group forms.Field
	Image forms.Field
}

type postFormPage struct {
	pageData
	IsEdit bool
	Post   *models.Post
	Form   *forms.PostForm
	Fields postFields
	Groups []models.Group
}

type authPage struct {
	pageData
	Error    string
	Next     string
	Username string
	Email    string
}

type notFoundPage struct {
	pageData
	Path string
}

func (s *Server) base(r *http.Request) pageData {
	u, _ := auth.UserFrom(r.Context())
	return pageData{User: u}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := s.Render.Render(w, status, name, data); err != nil {
		s.serverError(w, r, err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.Error("handler failed", "method", r.Method, "path", r.URL.Path, "err", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// notFound renders the custom 404 page; it is also the catch-all route.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "core/404.html", notFoundPage{
		pageData: s.base(r),
		Path:     r.URL.Path,
	})
}

// fail maps a missing row to the 404 page and anything else to a 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	s.serverError(w, r, err)
}

func (s *Server) staticPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, name, s.base(r))
	}
}

// pathID parses a numeric path value; a malformed id is simply not found.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.ErrNotFound
	}
	return id, nil
}
