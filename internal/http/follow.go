package httpx

import (
	"net/http"

	"yatube/internal/auth"
	"yatube/internal/store"
)

// GET /follow/
func (s *Server) handleFollowIndex(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	page, err := s.feed(r, store.PostFilter{FollowerID: u.ID})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "posts/follow.html", feedPage{pageData: s.base(r), Page: page})
}

// GET /profile/{username}/follow/
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	s.toggleFollow(w, r, true)
}

// GET /profile/{username}/unfollow/
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	s.toggleFollow(w, r, false)
}

func (s *Server) toggleFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	ctx := r.Context()
	u, _ := auth.UserFrom(ctx)
	author, err := s.Store.UserByUsername(ctx, r.PathValue("username"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if follow {
		err = s.Store.Follow(ctx, u.ID, author.ID)
	} else {
		err = s.Store.Unfollow(ctx, u.ID, author.ID)
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile/"+author.Username+"/", http.StatusFound)
}
