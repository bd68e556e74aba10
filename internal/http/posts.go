package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"yatube/internal/auth"
	"yatube/internal/events"
	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/store"
)

func (s *Server) feed(r *http.Request, f store.PostFilter) (*pagination.Page[models.Post], error) {
	return pagination.Fetch(r.Context(), s.Pages, r.URL.Query().Get("page"),
		func(ctx context.Context) (int, error) { return s.Store.CountPosts(ctx, f) },
		func(ctx context.Context, limit, offset int) ([]models.Post, error) {
			return s.Store.ListPosts(ctx, f, limit, offset)
		},
	)
}

// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.feed(r, store.PostFilter{})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "posts/index.html", feedPage{pageData: s.base(r), Page: page})
}

// GET /group/{slug}/
func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.Store.GroupBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := s.feed(r, store.PostFilter{GroupID: g.ID})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "posts/group_list.html", groupPage{
		pageData: s.base(r),
		Group:    g,
		Page:     page,
	})
}

// GET /profile/{username}/
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	author, err := s.Store.UserByUsername(ctx, r.PathValue("username"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := s.feed(r, store.PostFilter{AuthorID: author.ID})
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data := profilePage{
		pageData:  s.base(r),
		Author:    author,
		PostCount: page.Count,
		Page:      page,
	}
	if u := data.User; u != nil && u.ID != author.ID {
		data.Following, err = s.Store.IsFollowing(ctx, u.ID, author.ID)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	s.render(w, r, http.StatusOK, "posts/profile.html", data)
}

// GET /posts/{id}/
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.Store.PostByID(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	count, err := s.Store.CountPosts(ctx, store.PostFilter{AuthorID: p.AuthorID})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	comments, err := s.Store.ListComments(ctx, p.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data := detailPage{
		pageData:        s.base(r),
		Post:            p,
		AuthorPostCount: count,
		Comments:        comments,
		CommentField:    forms.CommentText,
	}
	if data.User != nil {
		data.CanEdit = data.User.ID == p.AuthorID
		data.CommentForm = &forms.CommentForm{Errors: forms.Errors{}}
	}
	s.render(w, r, http.StatusOK, "posts/post_detail.html", data)
}

// GET|POST /create/
func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := auth.UserFrom(ctx)

	if r.Method != http.MethodPost {
		s.renderPostForm(w, r, &forms.PostForm{Errors: forms.Errors{}}, nil)
		return
	}

	form, ok := s.bindPost(w, r)
	if !ok {
		return
	}
	if !form.Valid() {
		s.renderPostForm(w, r, form, nil)
		return
	}

	p := &models.Post{Text: form.Text, AuthorID: u.ID, GroupID: form.GroupID}
	if form.Image != nil {
		rel, err := s.Media.Save(ctx, form.Image.Filename, form.Image.ContentType, form.Image.Data)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		p.Image = rel
	}
	if err := s.Store.CreatePost(ctx, p); err != nil {
		s.dropMedia(ctx, p.Image)
		s.serverError(w, r, err)
		return
	}
	s.Log.Info("post created", "post", p.ID, "author", u.Username)

	p.Author = u
	if p.GroupID != nil {
		if g, err := s.Store.GroupByID(ctx, *p.GroupID); err == nil {
			p.Group = g
		}
	}

	s.publishCreated(ctx, p)
	http.Redirect(w, r, "/profile/"+u.Username+"/", http.StatusFound)
}

// GET|POST /posts/{id}/edit/
func (s *Server) handlePostEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := auth.UserFrom(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.Store.PostByID(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	detail := "/posts/" + strconv.FormatInt(p.ID, 10) + "/"
	if p.AuthorID != u.ID {
		http.Redirect(w, r, detail, http.StatusFound)
		return
	}

	if r.Method != http.MethodPost {
		form := &forms.PostForm{Text: p.Text, GroupID: p.GroupID, Errors: forms.Errors{}}
		if p.GroupID != nil {
			form.Group = strconv.FormatInt(*p.GroupID, 10)
		}
		s.renderPostForm(w, r, form, p)
		return
	}

	form, ok := s.bindPost(w, r)
	if !ok {
		return
	}
	if !form.Valid() {
		s.renderPostForm(w, r, form, p)
		return
	}

	oldImage := p.Image
	p.Text = form.Text
	p.GroupID = form.GroupID
	if form.Image != nil {
		rel, err := s.Media.Save(ctx, form.Image.Filename, form.Image.ContentType, form.Image.Data)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		p.Image = rel
	}
	if err := s.Store.UpdatePost(ctx, p); err != nil {
		if p.Image != oldImage {
			s.dropMedia(ctx, p.Image)
		}
		s.fail(w, r, err)
		return
	}
	if p.Image != oldImage {
		s.dropMedia(ctx, oldImage)
	}
	http.Redirect(w, r, detail, http.StatusFound)
}

// publishCreated announces a stored post. Broker errors are logged, never
// returned; the wait is capped at PublishTimeout.
func (s *Server) publishCreated(ctx context.Context, p *models.Post) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.PublishTimeout)
	defer cancel()
	if err := s.Events.PostCreated(ctx, events.NewPostCreated(p)); err != nil {
		s.Log.Warn("publish post created", "post", p.ID, "err", err)
	}
}

// dropMedia removes a stored file no post refers to any more.
func (s *Server) dropMedia(ctx context.Context, rel string) {
	if rel == "" {
		return
	}
	if err := s.Media.Delete(context.WithoutCancel(ctx), rel); err != nil {
		s.Log.Warn("delete media", "image", rel, "err", err)
	}
}

// bindPost reads and validates the post form. It writes the error response
// itself and reports false when the request cannot be handled.
func (s *Server) bindPost(w http.ResponseWriter, r *http.Request) (*forms.PostForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, forms.MaxUpload+1<<20)
	in, err := forms.ReadPostInput(r)
	if err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return nil, false
	}
	form, err := forms.ValidatePost(r.Context(), in, s.groupExists)
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	return form, true
}

func (s *Server) groupExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.Store.GroupByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, form *forms.PostForm, p *models.Post) {
	groups, err := s.Store.ListGroups(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "posts/create_post.html", postFormPage{
		pageData: s.base(r),
		IsEdit:   p != nil,
		Post:     p,
		Form:     form,
		Fields:   postFields{Text: forms.PostText, Group: forms.PostGroup, Image: forms.PostImage},
		Groups:   groups,
	})
}

// GET /posts/{id}/comment/ lands here after the login redirect.
func (s *Server) handleCommentRedirect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/posts/"+strconv.FormatInt(id, 10)+"/", http.StatusFound)
}

// POST /posts/{id}/comment/
func (s *Server) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := auth.UserFrom(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.Store.PostByID(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	form := forms.ValidateComment(r.PostFormValue(forms.CommentText.Name))
	if form.Valid() {
		c := &models.Comment{PostID: p.ID, AuthorID: u.ID, Text: form.Text}
		if err := s.Store.CreateComment(ctx, c); err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, "/posts/"+strconv.FormatInt(p.ID, 10)+"/", http.StatusFound)
}
