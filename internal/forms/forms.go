// Package forms binds and validates user input for posts and comments.
// Validation never touches storage beyond lookups passed in by the caller.
package forms

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"yatube/internal/media"
)

const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// MaxUpload caps a multipart post body.
const MaxUpload = 10 << 20

// Errors maps a field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) { e[field] = append(e[field], msg) }

func (e Errors) Get(field string) []string { return e[field] }

func (e Errors) Valid() bool { return len(e) == 0 }

// Field carries the label and help text a template shows next to an input.
type Field struct {
	Name     string
	Label    string
	HelpText string
}

var (
	PostText    = Field{Name: "text", Label: "Text", HelpText: "Text of the new post"}
	PostGroup   = Field{Name: "group", Label: "Group", HelpText: "Group the post will belong to"}
	PostImage   = Field{Name: "image", Label: "Image", HelpText: "Post picture"}
	CommentText = Field{Name: "text", Label: "Text", HelpText: "Text of the comment"}
)

// Upload is an uploaded file read into memory.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PostInput is the raw submission of the post form.
type PostInput struct {
	Text  string
	Group string
	Image *Upload
}

// PostForm is a validated post submission. GroupID is nil for "no group".
type PostForm struct {
	Text    string
	Group   string
	GroupID *int64
	Image   *Upload
	Errors  Errors
}

func (f *PostForm) Valid() bool { return f.Errors.Valid() }

// GroupChecker reports whether a group id exists.
type GroupChecker func(ctx context.Context, id int64) (bool, error)

// ReadPostInput binds the post form from a urlencoded or multipart request.
func ReadPostInput(r *http.Request) (PostInput, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxUpload); err != nil {
			return PostInput{}, err
		}
	} else if err := r.ParseForm(); err != nil {
		return PostInput{}, err
	}

	in := PostInput{
		Text:  r.FormValue(PostText.Name),
		Group: strings.TrimSpace(r.FormValue(PostGroup.Name)),
	}
	if r.MultipartForm == nil {
		return in, nil
	}
	file, header, err := r.FormFile(PostImage.Name)
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return PostInput{}, err
	}
	defer file.Close()
	up, err := readUpload(file, header)
	if err != nil {
		return PostInput{}, err
	}
	in.Image = up
	return in, nil
}

func readUpload(file multipart.File, header *multipart.FileHeader) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(file, MaxUpload+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 && header.Filename == "" {
		return nil, nil
	}
	return &Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// ValidatePost checks a post submission. The returned error is reserved for
// lookup failures; invalid input is reported through form.Errors.
func ValidatePost(ctx context.Context, in PostInput, groupExists GroupChecker) (*PostForm, error) {
	f := &PostForm{
		Text:   strings.TrimSpace(in.Text),
		Group:  in.Group,
		Image:  in.Image,
		Errors: Errors{},
	}
	if f.Text == "" {
		f.Errors.Add(PostText.Name, MsgRequired)
	}

	if in.Group != "" {
		id, err := strconv.ParseInt(in.Group, 10, 64)
		if err != nil || id <= 0 {
			f.Errors.Add(PostGroup.Name, MsgInvalidChoice)
		} else {
			ok, err := groupExists(ctx, id)
			if err != nil {
				return nil, err
			}
			if !ok {
				f.Errors.Add(PostGroup.Name, MsgInvalidChoice)
			} else {
				f.GroupID = &id
			}
		}
	}

	if in.Image != nil {
		if len(in.Image.Data) > MaxUpload {
			f.Errors.Add(PostImage.Name, "The image is too large.")
		} else if format, err := media.DetectImage(in.Image.Data); err != nil {
			f.Errors.Add(PostImage.Name, err.Error())
		} else if in.Image.ContentType == "" || in.Image.ContentType == "application/octet-stream" {
			in.Image.ContentType = "image/" + format
		}
	}
	return f, nil
}

// CommentForm is a validated comment submission.
type CommentForm struct {
	Text   string
	Errors Errors
}

func (f *CommentForm) Valid() bool { return f.Errors.Valid() }

func ValidateComment(text string) *CommentForm {
	f := &CommentForm{Text: strings.TrimSpace(text), Errors: Errors{}}
	if f.Text == "" {
		f.Errors.Add(CommentText.Name, MsgRequired)
	}
	return f
}
