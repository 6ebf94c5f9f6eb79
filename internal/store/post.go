package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/dtroode/gophsocial/internal/logger"
	"github.com/dtroode/gophsocial/internal/model"
)

// PostSnapshotName names the persisted post store snapshot.
const PostSnapshotName = "post-store"

// PostStore owns the locally known post collection.
type PostStore struct {
	api      model.PostAPI
	notifier model.Notifier
	logger   *logger.Logger
	opts     options

	mu          sync.RWMutex
	posts       []model.Post
	currentPost *model.Post
	postData    *model.PostsPage
}

// NewPostStore creates an empty PostStore.
func NewPostStore(api model.PostAPI, notifier model.Notifier, logger *logger.Logger, opts ...Option) *PostStore {
	return &PostStore{
		api:      api,
		notifier: notifier,
		logger:   logger.Component("post-store"),
		opts:     buildOptions(opts),
		posts:    []model.Post{},
	}
}

// Posts returns a copy of the known posts.
func (s *PostStore) Posts() []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts)
}

// Post returns a known post by id.
func (s *PostStore) Post(id string) (model.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.posts, func(p model.Post) bool { return p.ID == id })
}

// CurrentPost returns the post last fetched by id.
func (s *PostStore) CurrentPost() (model.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentPost == nil {
		return model.Post{}, false
	}
	return *s.currentPost, true
}

// PostData returns paging metadata of the last FetchAllPosts.
func (s *PostStore) PostData() (model.PostsPage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.postData == nil {
		return model.PostsPage{}, false
	}
	return *s.postData, true
}

// FetchAllPosts replaces the local collection with one page of posts.
// Earlier pages are discarded.
func (s *PostStore) FetchAllPosts(ctx context.Context, page, limit int) bool {
	result, err := s.api.ListPosts(ctx, page, limit)
	if err != nil {
		s.fail("Failed to fetch post", "fetch all posts", err, "page", page, "limit", limit)
		return false
	}
	s.logger.Debug("fetched posts", "page", page, "limit", limit, "count", len(result.Posts))

	meta := result
	meta.Posts = nil

	s.mu.Lock()
	s.posts = clonePosts(result.Posts)
	if s.posts == nil {
		s.posts = []model.Post{}
	}
	s.postData = &meta
	s.mu.Unlock()

	s.opts.sink.Remember(ctx, postAuthors(result.Posts)...)
	s.notifier.Success("Posts fetched")
	return true
}

// CreatePost publishes a post. Content, images and tags must all be
// non-empty, otherwise nothing is sent.
func (s *PostStore) CreatePost(ctx context.Context, content string, images, tags []string) bool {
	params := model.PostParams{Content: content, Images: images, Tags: tags}
	if err := validate.Struct(params); err != nil {
		s.logger.Warn("rejected post creation", "error", validationError(err))
		s.notifier.Warning("Enter the necessary fields data")
		return false
	}

	post, err := s.api.CreatePost(ctx, params)
	if err != nil {
		s.fail("Failed to create post", "create post", err)
		return false
	}
	s.logger.Debug("created post", "post_id", post.ID)

	s.mu.Lock()
	s.posts = append(s.posts, post)
	s.mu.Unlock()

	s.notifier.Success("Post created")
	return true
}

// FetchPostByID fetches a single post and makes it the current post.
func (s *PostStore) FetchPostByID(ctx context.Context, id string) (model.Post, bool) {
	post, err := s.api.GetPost(ctx, id)
	if err != nil {
		s.fail("Failed to fetch post", "fetch post", err, "post_id", id)
		return model.Post{}, false
	}

	s.mu.Lock()
	s.currentPost = &post
	s.mu.Unlock()

	s.opts.sink.Remember(ctx, postAuthors([]model.Post{post})...)
	s.notifier.Success("Post fetched")
	return post, true
}

// DeletePost deletes a post remotely and drops it from the local collection.
func (s *PostStore) DeletePost(ctx context.Context, id string) bool {
	if err := s.api.DeletePost(ctx, id); err != nil {
		s.fail("Post deletion failed", "delete post", err, "post_id", id)
		return false
	}

	s.mu.Lock()
	s.posts = lo.Reject(s.posts, func(p model.Post, _ int) bool { return p.ID == id })
	if s.currentPost != nil && s.currentPost.ID == id {
		s.currentPost = nil
	}
	s.mu.Unlock()

	s.notifier.Success("Post deleted")
	return true
}

// UpdatePost sends new content, images and tags and stores the server's copy.
// When the server answers without the post, the submitted content and tags
// are applied to the local copy; its images keep their server ids.
func (s *PostStore) UpdatePost(ctx context.Context, id, content string, images, tags []string) bool {
	post, err := s.api.UpdatePost(ctx, id, model.PostParams{Content: content, Images: images, Tags: tags})
	if err != nil {
		s.fail("Failed to update post", "update post", err, "post_id", id)
		return false
	}

	if post.ID == id {
		s.replace(id, post)
	} else {
		s.logger.Warn("update returned no post", "post_id", id, "returned_id", post.ID)
		s.mutate(id, func(p *model.Post) {
			p.Content = content
			p.Tags = append([]string(nil), tags...)
		})
	}
	s.notifier.Success("Post updated")
	return true
}

// FetchPostsByUsername returns one page of a user's posts. The local
// collection is left untouched.
func (s *PostStore) FetchPostsByUsername(ctx context.Context, username string, page, limit int) (model.PostsPage, bool) {
	result, err := s.api.ListPostsByUsername(ctx, username, page, limit)
	if err != nil {
		s.fail("Failed to fetch post", "fetch posts by username", err, "username", username)
		return model.PostsPage{}, false
	}

	s.opts.sink.Remember(ctx, postAuthors(result.Posts)...)
	s.notifier.Success("Post fetched")
	return result, true
}

// FetchPostsByTag returns one page of posts carrying tag. The local
// collection is left untouched.
func (s *PostStore) FetchPostsByTag(ctx context.Context, tag string, page, limit int) (model.PostsPage, bool) {
	result, err := s.api.ListPostsByTag(ctx, tag, page, limit)
	if err != nil {
		s.fail("Failed to fetch post", "fetch posts by tag", err, "tag", tag)
		return model.PostsPage{}, false
	}

	s.opts.sink.Remember(ctx, postAuthors(result.Posts)...)
	s.notifier.Success("Post fetched")
	return result, true
}

// RemovePostImage detaches an image and applies the change locally.
func (s *PostStore) RemovePostImage(ctx context.Context, postID, imageID string) bool {
	post, err := s.api.RemovePostImage(ctx, postID, imageID)
	if err != nil {
		s.fail("Failed to remove post image", "remove post image", err, "post_id", postID, "image_id", imageID)
		return false
	}

	if post.ID != "" {
		s.replace(postID, post)
	} else {
		s.mutate(postID, func(p *model.Post) {
			p.Images = lo.Reject(p.Images, func(img model.Image, _ int) bool { return img.ID == imageID })
		})
	}

	s.notifier.Success("Image removed")
	return true
}

// LikePost toggles the viewer's like. The local flag and like count follow
// the server's answer together.
func (s *PostStore) LikePost(ctx context.Context, postID string) bool {
	liked, err := s.api.LikePost(ctx, postID)
	if err != nil {
		s.fail("Failed to like or unlike post", "like post", err, "post_id", postID)
		return false
	}

	s.mutate(postID, func(p *model.Post) {
		p.Likes = toggleCount(p.Likes, p.IsLiked, liked)
		p.IsLiked = liked
	})

	if liked {
		s.notifier.Success("Post Liked")
	} else {
		s.notifier.Success("Post Unliked")
	}
	return true
}

// MarkBookmarked sets the bookmark flag of a known post without a remote call.
func (s *PostStore) MarkBookmarked(postID string, bookmarked bool) {
	s.mutate(postID, func(p *model.Post) { p.IsBookmarked = bookmarked })
}

// replace swaps the stored copy of id (and the current post) for post.
func (s *PostStore) replace(id string, post model.Post) {
	s.mutate(id, func(p *model.Post) { *p = post })
}

func (s *PostStore) mutate(id string, fn func(p *model.Post)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, idx, ok := lo.FindIndexOf(s.posts, func(p model.Post) bool { return p.ID == id }); ok {
		fn(&s.posts[idx])
	}
	if s.currentPost != nil && s.currentPost.ID == id {
		cur := *s.currentPost
		fn(&cur)
		s.currentPost = &cur
	}
}

func (s *PostStore) fail(msg, action string, err error, args ...any) {
	s.logger.Error("failed to "+action, append(args, "error", err)...)
	s.notifier.Error(msg)
}

type postSnapshot struct {
	Posts       []model.Post     `json:"posts"`
	CurrentPost *model.Post      `json:"currentPost"`
	PostData    *model.PostsPage `json:"postData"`
}

// SnapshotName implements persist.Snapshotter.
func (s *PostStore) SnapshotName() string { return PostSnapshotName }

// Snapshot serializes the persisted subset of the store.
func (s *PostStore) Snapshot() ([]byte, error) {
	s.mu.RLock()
	snap := postSnapshot{Posts: s.posts, CurrentPost: s.currentPost, PostData: s.postData}
	payload, err := json.Marshal(snap)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post snapshot: %w", err)
	}
	return payload, nil
}

// Restore rehydrates the store from a snapshot.
func (s *PostStore) Restore(payload []byte) error {
	var snap postSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("failed to unmarshal post snapshot: %w", err)
	}
	if snap.Posts == nil {
		snap.Posts = []model.Post{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = snap.Posts
	s.currentPost = snap.CurrentPost
	s.postData = snap.PostData
	return nil
}
