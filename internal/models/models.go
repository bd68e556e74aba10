package models

import "time"

type User struct {
	ID        int64
	Email     string
	Username  string
	CreatedAt time.Time
}

type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}

// Post is a single entry. Author is always loaded; Group only when GroupID is set.
type Post struct {
	ID        int64
	Text      string
	AuthorID  int64
	GroupID   *int64
	Image     string // relative media path, empty when no image
	CreatedAt time.Time

	Author *User
	Group  *Group
}

type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Text      string
	CreatedAt time.Time

	Author *User
}
