package store

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gophsocial/internal/model"
)

// MockPostAPI mocks the PostAPI interface
type MockPostAPI struct {
	mock.Mock
}

func (m *MockPostAPI) ListPosts(ctx context.Context, page, limit int) (model.PostsPage, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).(model.PostsPage), args.Error(1)
}

func (m *MockPostAPI) CreatePost(ctx context.Context, params model.PostParams) (model.Post, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostAPI) GetPost(ctx context.Context, id string) (model.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostAPI) UpdatePost(ctx context.Context, id string, params model.PostParams) (model.Post, error) {
	args := m.Called(ctx, id, params)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostAPI) DeletePost(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostAPI) ListPostsByUsername(ctx context.Context, username string, page, limit int) (model.PostsPage, error) {
	args := m.Called(ctx, username, page, limit)
	return args.Get(0).(model.PostsPage), args.Error(1)
}

func (m *MockPostAPI) ListPostsByTag(ctx context.Context, tag string, page, limit int) (model.PostsPage, error) {
	args := m.Called(ctx, tag, page, limit)
	return args.Get(0).(model.PostsPage), args.Error(1)
}

func (m *MockPostAPI) RemovePostImage(ctx context.Context, postID, imageID string) (model.Post, error) {
	args := m.Called(ctx, postID, imageID)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostAPI) LikePost(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockUserAPI mocks the UserAPI interface
type MockUserAPI struct {
	mock.Mock
}

func (m *MockUserAPI) GetProfile(ctx context.Context) (model.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockUserAPI) UpdateProfile(ctx context.Context, params model.ProfileParams) (model.Profile, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockUserAPI) GetProfileByUsername(ctx context.Context, username string) (model.Profile, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockUserAPI) UpdateCoverImage(ctx context.Context, url string) (model.Profile, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockUserAPI) ListFollowers(ctx context.Context, username string) ([]model.Profile, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]model.Profile), args.Error(1)
}

func (m *MockUserAPI) ListFollowing(ctx context.Context, username string) ([]model.Profile, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]model.Profile), args.Error(1)
}

func (m *MockUserAPI) Follow(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserAPI) ListBookmarks(ctx context.Context) ([]model.Post, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockUserAPI) BookmarkPost(ctx context.Context, postID string) (bool, error) {
	args := m.Called(ctx, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserAPI) ListPostsByUsername(ctx context.Context, username string, page, limit int) (model.PostsPage, error) {
	args := m.Called(ctx, username, page, limit)
	return args.Get(0).(model.PostsPage), args.Error(1)
}

// MockCommentAPI mocks the CommentAPI interface
type MockCommentAPI struct {
	mock.Mock
}

func (m *MockCommentAPI) ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommentAPI) AddComment(ctx context.Context, postID, content string) (model.Comment, error) {
	args := m.Called(ctx, postID, content)
	return args.Get(0).(model.Comment), args.Error(1)
}

func (m *MockCommentAPI) UpdateComment(ctx context.Context, id, content string) (model.Comment, error) {
	args := m.Called(ctx, id, content)
	return args.Get(0).(model.Comment), args.Error(1)
}

func (m *MockCommentAPI) DeleteComment(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentAPI) LikeComment(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// recordingSink collects every profile handed to Remember.
type recordingSink struct {
	profiles []model.Profile
}

func (r *recordingSink) Remember(_ context.Context, profiles ...model.Profile) {
	r.profiles = append(r.profiles, profiles...)
}
