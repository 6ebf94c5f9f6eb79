package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gophsocial/internal/model"
	"github.com/dtroode/gophsocial/internal/notify"
	"github.com/dtroode/gophsocial/internal/testutil"
)

func newPostStore(api *MockPostAPI, opts ...Option) (*PostStore, *notify.Recorder) {
	rec := notify.NewRecorder()
	return NewPostStore(api, rec, testutil.MakeNoopLogger(), opts...), rec
}

func makePosts(n int) []model.Post {
	posts := make([]model.Post, n)
	for i := range posts {
		posts[i] = model.Post{ID: fmt.Sprintf("p%d", i+1), Content: fmt.Sprintf("post %d", i+1)}
	}
	return posts
}

func lastNotification(t *testing.T, rec *notify.Recorder) notify.Notification {
	t.Helper()
	n, ok := rec.Last()
	require.True(t, ok, "expected a notification")
	return n
}

func TestPostStore_CreatePost(t *testing.T) {
	ctx := context.Background()
	api := &MockPostAPI{}
	s, rec := newPostStore(api)

	params := model.PostParams{Content: "hello", Images: []string{"https://img/1.png"}, Tags: []string{"go"}}
	created := model.Post{ID: "new", Content: "hello", Tags: []string{"go"}}
	api.On("CreatePost", mock.Anything, params).Return(created, nil).Once()

	ok := s.CreatePost(ctx, params.Content, params.Images, params.Tags)

	require.True(t, ok)
	api.AssertNumberOfCalls(t, "CreatePost", 1)
	posts := s.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, created, posts[0])
	assert.Equal(t, notify.LevelSuccess, lastNotification(t, rec).Level)
}

func TestPostStore_CreatePost_AppendsToExisting(t *testing.T) {
	ctx := context.Background()
	api := &MockPostAPI{}
	s, _ := newPostStore(api)

	api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{Posts: makePosts(3)}, nil).Once()
	require.True(t, s.FetchAllPosts(ctx, 1, 10))

	created := model.Post{ID: "p4"}
	api.On("CreatePost", mock.Anything, mock.Anything).Return(created, nil).Once()
	require.True(t, s.CreatePost(ctx, "four", []string{"img"}, []string{"tag"}))

	posts := s.Posts()
	assert.Len(t, posts, 4)
	assert.Contains(t, posts, created)
}

func TestPostStore_CreatePost_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		images  []string
		tags    []string
	}{
		{name: "empty content", content: "", images: []string{"img"}, tags: []string{"tag"}},
		{name: "nil images", content: "hi", images: nil, tags: []string{"tag"}},
		{name: "empty images", content: "hi", images: []string{}, tags: []string{"tag"}},
		{name: "nil tags", content: "hi", images: []string{"img"}, tags: nil},
		{name: "empty tags", content: "hi", images: []string{"img"}, tags: []string{}},
		{name: "everything empty", content: "", images: nil, tags: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockPostAPI{}
			s, rec := newPostStore(api)

			ok := s.CreatePost(context.Background(), tt.content, tt.images, tt.tags)

			assert.False(t, ok)
			api.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
			assert.Empty(t, s.Posts())
			assert.Equal(t, notify.LevelWarning, lastNotification(t, rec).Level)
		})
	}
}

func TestPostStore_CreatePost_RemoteFailure(t *testing.T) {
	api := &MockPostAPI{}
	s, rec := newPostStore(api)
	api.On("CreatePost", mock.Anything, mock.Anything).Return(model.Post{}, errors.New("boom"))

	ok := s.CreatePost(context.Background(), "hi", []string{"img"}, []string{"tag"})

	assert.False(t, ok)
	assert.Empty(t, s.Posts())
	n := lastNotification(t, rec)
	assert.Equal(t, notify.LevelError, n.Level)
	assert.Equal(t, "Failed to create post", n.Message)
}

func TestPostStore_FetchAllPosts_ReplacesCollection(t *testing.T) {
	ctx := context.Background()
	api := &MockPostAPI{}
	sink := &recordingSink{}
	s, _ := newPostStore(api, WithProfileSink(sink))

	first := makePosts(5)
	second := []model.Post{
		{ID: "x1", Author: model.Profile{Account: model.Account{ID: "a1", Username: "alice"}}},
		{ID: "x2"},
	}
	api.On("ListPosts", mock.Anything, 1, 5).Return(model.PostsPage{Posts: first, Page: 1}, nil).Once()
	api.On("ListPosts", mock.Anything, 2, 5).Return(model.PostsPage{Posts: second, Page: 2, HasPrevPage: true}, nil).Once()

	require.True(t, s.FetchAllPosts(ctx, 1, 5))
	require.Len(t, s.Posts(), 5)

	require.True(t, s.FetchAllPosts(ctx, 2, 5))
	assert.Equal(t, second, s.Posts())

	meta, ok := s.PostData()
	require.True(t, ok)
	assert.Equal(t, 2, meta.Page)
	assert.True(t, meta.HasPrevPage)
	assert.Nil(t, meta.Posts)

	require.Len(t, sink.profiles, 1)
	assert.Equal(t, "alice", sink.profiles[0].Account.Username)
}

func TestPostStore_FetchAllPosts_Failure(t *testing.T) {
	api := &MockPostAPI{}
	s, rec := newPostStore(api)
	api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{}, errors.New("offline"))

	assert.False(t, s.FetchAllPosts(context.Background(), 1, 10))
	assert.Equal(t, "Failed to fetch post", lastNotification(t, rec).Message)
	_, ok := s.PostData()
	assert.False(t, ok)
}

func TestPostStore_DeletePost(t *testing.T) {
	ctx := context.Background()
	posts := makePosts(4)

	for _, target := range posts {
		t.Run(target.ID, func(t *testing.T) {
			api := &MockPostAPI{}
			s, _ := newPostStore(api)
			api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{Posts: posts}, nil)
			api.On("DeletePost", mock.Anything, target.ID).Return(nil)
			require.True(t, s.FetchAllPosts(ctx, 1, 10))

			require.True(t, s.DeletePost(ctx, target.ID))

			remaining := s.Posts()
			assert.Len(t, remaining, len(posts)-1)
			for _, p := range remaining {
				assert.NotEqual(t, target.ID, p.ID)
			}
		})
	}
}

func TestPostStore_DeletePost_FailureKeepsPost(t *testing.T) {
	ctx := context.Background()
	api := &MockPostAPI{}
	s, rec := newPostStore(api)
	api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{Posts: makePosts(2)}, nil)
	api.On("DeletePost", mock.Anything, "p1").Return(errors.New("forbidden"))
	require.True(t, s.FetchAllPosts(ctx, 1, 10))

	assert.False(t, s.DeletePost(ctx, "p1"))
	assert.Len(t, s.Posts(), 2)
	assert.Equal(t, "Post deletion failed", lastNotification(t, rec).Message)
}

func TestPostStore_LikePost(t *testing.T) {
	tests := []struct {
		name      string
		initial   model.Post
		liked     bool
		wantLikes int
		wantMsg   string
	}{
		{
			name:      "liked",
			initial:   model.Post{ID: "p1", Likes: 3},
			liked:     true,
			wantLikes: 4,
			wantMsg:   "Post Liked",
		},
		{
			name:      "unliked",
			initial:   model.Post{ID: "p1", Likes: 3, IsLiked: true},
			liked:     false,
			wantLikes: 2,
			wantMsg:   "Post Unliked",
		},
		{
			name:      "already liked stays put",
			initial:   model.Post{ID: "p1", Likes: 3, IsLiked: true},
			liked:     true,
			wantLikes: 3,
			wantMsg:   "Post Liked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			api := &MockPostAPI{}
			s, rec := newPostStore(api)
			api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{Posts: []model.Post{tt.initial}}, nil)
			api.On("LikePost", mock.Anything, "p1").Return(tt.liked, nil)
			require.True(t, s.FetchAllPosts(ctx, 1, 10))

			require.True(t, s.LikePost(ctx, "p1"))

			n := lastNotification(t, rec)
			assert.Equal(t, notify.LevelSuccess, n.Level)
			assert.Equal(t, tt.wantMsg, n.Message)

			post, ok := s.Post("p1")
			require.True(t, ok)
			assert.Equal(t, tt.liked, post.IsLiked)
			assert.Equal(t, tt.wantLikes, post.Likes)
		})
	}
}

func TestPostStore_LikePost_Failure(t *testing.T) {
	api := &MockPostAPI{}
	s, rec := newPostStore(api)
	api.On("LikePost", mock.Anything, "p1").Return(false, errors.New("boom"))

	assert.False(t, s.LikePost(context.Background(), "p1"))
	assert.Equal(t, "Failed to like or unlike post", lastNotification(t, rec).Message)
}

func TestPostStore_FetchPostByID(t *testing.T) {
	ctx := context.Background()
	api := &MockPostAPI{}
	s, _ := newPostStore(api)
	post := model.Post{ID: "p9", Content: "single"}
	api.On("GetPost", mock.Anything, "p9").Return(post, nil)

	got, ok := s.FetchPostByID(ctx, "p9")
	require.True(t, ok)
	assert.Equal(t, post, got)

	current, ok := s.CurrentPost()
	require.True(t, ok)
	assert.Equal(t, post, current)
	assert.Empty(t, s.Posts())

	api.On("DeletePost", mock.Anything, "p9").Return(nil)
	require.True(t, s.DeletePost(ctx, "p9"))
	_, ok = s.CurrentPost()
	assert.False(t, ok)
}

func TestPostStore_UpdatePost_ReplacesLocalCopy(t *testing.T) {
	ctx := context.Background()
	api := &MockPostAPI{}
	s, rec := newPostStore(api)
	api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{Posts: makePosts(2)}, nil)
	require.True(t, s.FetchAllPosts(ctx, 1, 10))

	updated := model.Post{ID: "p2", Content: "edited", Tags: []string{"new"}}
	api.On("UpdatePost", mock.Anything, "p2", model.PostParams{Content: "edited", Images: []string{"i"}, Tags: []string{"new"}}).
		Return(updated, nil)

	require.True(t, s.UpdatePost(ctx, "p2", "edited", []string{"i"}, []string{"new"}))

	got, ok := s.Post("p2")
	require.True(t, ok)
	assert.Equal(t, updated, got)
	assert.Equal(t, "Post updated", lastNotification(t, rec).Message)
}

func TestPostStore_UpdatePost_EmptyResponseKeepsPost(t *testing.T) {
	ctx := context.Background()
	api := &MockPostAPI{}
	s, rec := newPostStore(api)
	api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{Posts: makePosts(2)}, nil)
	require.True(t, s.FetchAllPosts(ctx, 1, 10))
	before, ok := s.Post("p2")
	require.True(t, ok)

	api.On("UpdatePost", mock.Anything, "p2", mock.Anything).Return(model.Post{}, nil)

	require.True(t, s.UpdatePost(ctx, "p2", "edited", nil, []string{"go"}))

	ids := lo.Map(s.Posts(), func(p model.Post, _ int) string { return p.ID })
	assert.Equal(t, []string{"p1", "p2"}, ids)

	got, ok := s.Post("p2")
	require.True(t, ok)
	assert.Equal(t, "edited", got.Content)
	assert.Equal(t, []string{"go"}, got.Tags)
	assert.Equal(t, before.Author, got.Author)
	assert.Equal(t, before.CreatedAt, got.CreatedAt)
	assert.Equal(t, "Post updated", lastNotification(t, rec).Message)
}

func TestPostStore_RemovePostImage(t *testing.T) {
	ctx := context.Background()
	initial := model.Post{ID: "p1", Images: []model.Image{{ID: "i1"}, {ID: "i2"}}}

	t.Run("server returns post", func(t *testing.T) {
		api := &MockPostAPI{}
		s, _ := newPostStore(api)
		api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{Posts: []model.Post{initial}}, nil)
		api.On("RemovePostImage", mock.Anything, "p1", "i1").
			Return(model.Post{ID: "p1", Images: []model.Image{{ID: "i2"}}}, nil)
		require.True(t, s.FetchAllPosts(ctx, 1, 10))

		require.True(t, s.RemovePostImage(ctx, "p1", "i1"))

		got, _ := s.Post("p1")
		assert.Equal(t, []model.Image{{ID: "i2"}}, got.Images)
	})

	t.Run("server returns nothing", func(t *testing.T) {
		api := &MockPostAPI{}
		s, _ := newPostStore(api)
		api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{Posts: []model.Post{initial}}, nil)
		api.On("RemovePostImage", mock.Anything, "p1", "i2").Return(model.Post{}, nil)
		require.True(t, s.FetchAllPosts(ctx, 1, 10))

		require.True(t, s.RemovePostImage(ctx, "p1", "i2"))

		got, _ := s.Post("p1")
		assert.Equal(t, []model.Image{{ID: "i1"}}, got.Images)
	})
}

func TestPostStore_FilteredFetchesLeaveCollection(t *testing.T) {
	ctx := context.Background()
	api := &MockPostAPI{}
	s, _ := newPostStore(api)
	api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{Posts: makePosts(2)}, nil)
	api.On("ListPostsByUsername", mock.Anything, "alice", 1, 10).Return(model.PostsPage{Posts: makePosts(7)}, nil)
	api.On("ListPostsByTag", mock.Anything, "go", 2, 3).Return(model.PostsPage{Posts: makePosts(3), Page: 2}, nil)
	require.True(t, s.FetchAllPosts(ctx, 1, 10))

	byUser, ok := s.FetchPostsByUsername(ctx, "alice", 1, 10)
	require.True(t, ok)
	assert.Len(t, byUser.Posts, 7)

	byTag, ok := s.FetchPostsByTag(ctx, "go", 2, 3)
	require.True(t, ok)
	assert.Equal(t, 2, byTag.Page)

	assert.Len(t, s.Posts(), 2)
}

func TestPostStore_MarkBookmarked(t *testing.T) {
	ctx := context.Background()
	api := &MockPostAPI{}
	s, _ := newPostStore(api)
	api.On("ListPosts", mock.Anything, 1, 10).Return(model.PostsPage{Posts: makePosts(1)}, nil)
	require.True(t, s.FetchAllPosts(ctx, 1, 10))

	s.MarkBookmarked("p1", true)

	got, _ := s.Post("p1")
	assert.True(t, got.IsBookmarked)
}

func TestPostStore_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	api := &MockPostAPI{}
	s, _ := newPostStore(api)
	api.On("ListPosts", mock.Anything, 3, 2).Return(model.PostsPage{Posts: makePosts(2), Page: 3, Limit: 2}, nil)
	api.On("GetPost", mock.Anything, "p1").Return(makePosts(1)[0], nil)
	require.True(t, s.FetchAllPosts(ctx, 3, 2))
	_, ok := s.FetchPostByID(ctx, "p1")
	require.True(t, ok)

	payload, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, PostSnapshotName, s.SnapshotName())

	restored, _ := newPostStore(&MockPostAPI{})
	require.NoError(t, restored.Restore(payload))

	assert.Equal(t, s.Posts(), restored.Posts())
	cur, ok := restored.CurrentPost()
	require.True(t, ok)
	assert.Equal(t, "p1", cur.ID)
	meta, ok := restored.PostData()
	require.True(t, ok)
	assert.Equal(t, 3, meta.Page)

	assert.Error(t, restored.Restore([]byte("{broken")))
}
