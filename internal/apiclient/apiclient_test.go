package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sameanonim/imageboard/internal/domain"
	internal_errors "github.com/sameanonim/imageboard/internal/errors"
)

func TestGetThread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/boards/b/threads/7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"posts":[{"id":1,"thread_id":7,"content":"<p>op</p>","created_at":"2024-03-02T14:05:00Z"},{"id":2,"thread_id":7,"name":"anon","content":"<p>reply</p>","created_at":"2024-03-02T14:06:00Z"}]}`))
	}))
	defer srv.Close()

	posts, err := New(srv.URL).GetThread(context.Background(), "b", 7)
	require.NoError(t, err)

	require.Len(t, posts, 2)
	assert.Equal(t, int64(1), posts[0].Id)
	assert.Equal(t, "anon", posts[1].Author)
	assert.Equal(t, time.Date(2024, time.March, 2, 14, 6, 0, 0, time.UTC), posts[1].CreatedAt)
}

func TestGetThreadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetThread(context.Background(), "b", 7)

	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestReportPost(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/posts/42/report", r.URL.Path)
			w.Write([]byte(`{"success":true}`))
		}))
		defer srv.Close()

		assert.NoError(t, New(srv.URL).ReportPost(context.Background(), 42))
	})

	t.Run("semantic failure carries server message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false,"message":"already reported"}`))
		}))
		defer srv.Close()

		err := New(srv.URL).ReportPost(context.Background(), 42)

		var semErr *internal_errors.SemanticError
		require.ErrorAs(t, err, &semErr)
		assert.Equal(t, "already reported", semErr.Message)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(nil)
		srv.Close() // refuse connections

		err := New(srv.URL).ReportPost(context.Background(), 42)
		require.Error(t, err)

		var semErr *internal_errors.SemanticError
		assert.False(t, errors.As(err, &semErr), "transport failures must not look semantic")
	})
}

func TestSetTheme(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/set-theme", r.URL.Path)
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		got = string(body)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).SetTheme(context.Background(), domain.ThemeDark))
	assert.JSONEq(t, `{"theme":"dark"}`, got)
}

func TestSubmitReply(t *testing.T) {
	t.Run("multipart fields and files arrive", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "anon", r.FormValue("name"))
			assert.Equal(t, "hello", r.FormValue("content"))

			fileHeaders := r.MultipartForm.File["files"]
			require.Len(t, fileHeaders, 1)
			assert.Equal(t, "cat.png", fileHeaders[0].Filename)
			assert.Equal(t, "image/png", fileHeaders[0].Header.Get("Content-Type"))
		}))
		defer srv.Close()

		err := New(srv.URL).SubmitReply(context.Background(), "/threads/7/reply",
			map[string]string{"name": "anon", "content": "hello"},
			[]ReplyFile{{Filename: "cat.png", ContentType: "image/png", Content: strings.NewReader("pngdata")}})
		require.NoError(t, err)
	})

	t.Run("server message surfaces on failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"thread is locked"}`))
		}))
		defer srv.Close()

		err := New(srv.URL).SubmitReply(context.Background(), "/threads/7/reply", nil, nil)

		var semErr *internal_errors.SemanticError
		require.ErrorAs(t, err, &semErr)
		assert.Equal(t, "thread is locked", semErr.Message)
	})

	t.Run("generic fallback without server message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		err := New(srv.URL).SubmitReply(context.Background(), "/threads/7/reply", nil, nil)

		var semErr *internal_errors.SemanticError
		require.ErrorAs(t, err, &semErr)
		assert.Equal(t, "failed to submit reply", semErr.Error())
	})
}
