package forms

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallGIF = []byte("GIF89a\x02\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x00\x00\x00\x00\x00,\x00\x00\x00\x00\x02\x00\x01\x00\x00\x02\x02\x0c\n\x00;")

func groups(ids ...int64) GroupChecker {
	return func(_ context.Context, id int64) (bool, error) {
		for _, g := range ids {
			if g == id {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestValidatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("text only", func(t *testing.T) {
		f, err := ValidatePost(ctx, PostInput{Text: "  hello  "}, groups())
		require.NoError(t, err)
		assert.True(t, f.Valid())
		assert.Equal(t, "hello", f.Text)
		assert.Nil(t, f.GroupID)
	})

	t.Run("blank text", func(t *testing.T) {
		f, err := ValidatePost(ctx, PostInput{Text: "   "}, groups())
		require.NoError(t, err)
		assert.False(t, f.Valid())
		assert.Equal(t, []string{MsgRequired}, f.Errors.Get("text"))
	})

	t.Run("existing group", func(t *testing.T) {
		f, err := ValidatePost(ctx, PostInput{Text: "x", Group: "7"}, groups(7))
		require.NoError(t, err)
		require.True(t, f.Valid())
		require.NotNil(t, f.GroupID)
		assert.Equal(t, int64(7), *f.GroupID)
	})

	t.Run("unknown or malformed group", func(t *testing.T) {
		for _, g := range []string{"8", "abc", "-1"} {
			f, err := ValidatePost(ctx, PostInput{Text: "x", Group: g}, groups(7))
			require.NoError(t, err)
			assert.Equal(t, []string{MsgInvalidChoice}, f.Errors.Get("group"), g)
		}
	})

	t.Run("group lookup failure", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := ValidatePost(ctx, PostInput{Text: "x", Group: "1"},
			func(context.Context, int64) (bool, error) { return false, boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("image", func(t *testing.T) {
		up := &Upload{Filename: "small.gif", Data: smallGIF}
		f, err := ValidatePost(ctx, PostInput{Text: "x", Image: up}, groups())
		require.NoError(t, err)
		assert.True(t, f.Valid())
		assert.Equal(t, "image/gif", f.Image.ContentType)
	})

	t.Run("not an image", func(t *testing.T) {
		up := &Upload{Filename: "notes.txt", Data: []byte("plain text")}
		f, err := ValidatePost(ctx, PostInput{Text: "x", Image: up}, groups())
		require.NoError(t, err)
		assert.False(t, f.Valid())
		assert.Len(t, f.Errors.Get("image"), 1)
	})
}

func TestValidateComment(t *testing.T) {
	assert.True(t, ValidateComment("nice post").Valid())
	f := ValidateComment(" \n ")
	assert.False(t, f.Valid())
	assert.Equal(t, []string{MsgRequired}, f.Errors.Get("text"))
}

func TestReadPostInput(t *testing.T) {
	t.Run("urlencoded", func(t *testing.T) {
		body := url.Values{"text": {"hello"}, "group": {"3"}}.Encode()
		r := httptest.NewRequest(http.MethodPost, "/create/", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		in, err := ReadPostInput(r)
		require.NoError(t, err)
		assert.Equal(t, "hello", in.Text)
		assert.Equal(t, "3", in.Group)
		assert.Nil(t, in.Image)
	})

	t.Run("multipart with image", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("text", "with picture"))
		fw, err := mw.CreateFormFile("image", "small.gif")
		require.NoError(t, err)
		_, err = fw.Write(smallGIF)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		r := httptest.NewRequest(http.MethodPost, "/create/", &buf)
		r.Header.Set("Content-Type", mw.FormDataContentType())

		in, err := ReadPostInput(r)
		require.NoError(t, err)
		assert.Equal(t, "with picture", in.Text)
		require.NotNil(t, in.Image)
		assert.Equal(t, "small.gif", in.Image.Filename)
		assert.Equal(t, smallGIF, in.Image.Data)
	})
}
