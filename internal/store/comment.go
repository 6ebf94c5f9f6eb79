package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/dtroode/gophsocial/internal/logger"
	"github.com/dtroode/gophsocial/internal/model"
)

// CommentSnapshotName names the persisted comment store snapshot.
const CommentSnapshotName = "comment-store"

// CommentStore owns the comments of the posts being viewed, kept per post.
type CommentStore struct {
	api      model.CommentAPI
	notifier model.Notifier
	logger   *logger.Logger
	opts     options

	mu       sync.RWMutex
	comments map[string][]model.Comment
	content  string
}

// NewCommentStore creates an empty CommentStore.
func NewCommentStore(api model.CommentAPI, notifier model.Notifier, logger *logger.Logger, opts ...Option) *CommentStore {
	return &CommentStore{
		api:      api,
		notifier: notifier,
		logger:   logger.Component("comment-store"),
		opts:     buildOptions(opts),
		comments: make(map[string][]model.Comment),
	}
}

// SetContent stages the text consumed by AddComment and UpdateComment.
func (s *CommentStore) SetContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = content
}

// Content returns the staged comment text.
func (s *CommentStore) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

// Comments returns the known comments of postID in server order.
func (s *CommentStore) Comments(postID string) []model.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.comments[postID]
	out := make([]model.Comment, len(list))
	copy(out, list)
	return out
}

// PostIDs returns the posts whose comments are loaded.
func (s *CommentStore) PostIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Keys(s.comments)
}

// FetchPostComments replaces the comments of postID. Comments of other
// posts are kept.
func (s *CommentStore) FetchPostComments(ctx context.Context, postID string) bool {
	comments, err := s.api.ListComments(ctx, postID)
	if err != nil {
		s.fail("Failed to fetch comments", "fetch post comments", err, "post_id", postID)
		return false
	}

	list := make([]model.Comment, len(comments))
	copy(list, comments)

	s.mu.Lock()
	s.comments[postID] = list
	s.mu.Unlock()

	s.opts.sink.Remember(ctx, lo.Map(comments, func(c model.Comment, _ int) model.Profile { return c.Author })...)
	s.notifier.Success("Post's comments fetched")
	return true
}

// AddComment submits the staged content on postID and appends the comment
// the server created.
func (s *CommentStore) AddComment(ctx context.Context, postID string) bool {
	content := s.Content()
	if content == "" {
		s.notifier.Warning("Please enter the comment")
		return false
	}

	comment, err := s.api.AddComment(ctx, postID, content)
	if err != nil {
		s.fail("Comment Addition Failed", "add comment", err, "post_id", postID)
		return false
	}
	if comment.ID == "" {
		s.fail("Comment Addition Failed", "add comment", fmt.Errorf("server returned no comment"), "post_id", postID)
		return false
	}
	if comment.PostID == "" {
		comment.PostID = postID
	}

	s.mu.Lock()
	s.comments[postID] = append(s.comments[postID], comment)
	s.mu.Unlock()

	s.notifier.Success("Comment added")
	return true
}

// DeleteComment deletes a comment remotely and drops it locally.
func (s *CommentStore) DeleteComment(ctx context.Context, id string) bool {
	if err := s.api.DeleteComment(ctx, id); err != nil {
		s.fail("Failed to delete comment", "delete comment", err, "comment_id", id)
		return false
	}

	s.mu.Lock()
	for postID, list := range s.comments {
		s.comments[postID] = lo.Reject(list, func(c model.Comment, _ int) bool { return c.ID == id })
	}
	s.mu.Unlock()

	s.notifier.Success("Comment Deleted")
	return true
}

// UpdateComment sends the staged content as the comment's new text. Empty
// content raises a warning but the request is still sent.
func (s *CommentStore) UpdateComment(ctx context.Context, id string) bool {
	content := s.Content()
	if content == "" {
		s.notifier.Warning("Please enter the comment")
	}

	comment, err := s.api.UpdateComment(ctx, id, content)
	if err != nil {
		s.fail("Failed to update Comment", "update comment", err, "comment_id", id)
		return false
	}

	if comment.ID != "" {
		s.mutate(id, func(c *model.Comment) { *c = comment })
	} else {
		s.mutate(id, func(c *model.Comment) { c.Content = content })
	}

	s.notifier.Success("Comment updated")
	return true
}

// LikeComment toggles the viewer's like on a comment; flag and count move
// together.
func (s *CommentStore) LikeComment(ctx context.Context, id string) bool {
	liked, err := s.api.LikeComment(ctx, id)
	if err != nil {
		s.fail("Error in liking comment", "like comment", err, "comment_id", id)
		return false
	}

	s.mutate(id, func(c *model.Comment) {
		c.Likes = toggleCount(c.Likes, c.IsLiked, liked)
		c.IsLiked = liked
	})

	if liked {
		s.notifier.Success("Comment Liked")
	} else {
		s.notifier.Success("Comment Unliked")
	}
	return true
}

func (s *CommentStore) mutate(id string, fn func(c *model.Comment)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, list := range s.comments {
		for i := range list {
			if list[i].ID == id {
				fn(&list[i])
				return
			}
		}
	}
}

func (s *CommentStore) fail(msg, action string, err error, args ...any) {
	s.logger.Error("failed to "+action, append(args, "error", err)...)
	s.notifier.Error(msg)
}

type commentSnapshot struct {
	Comments map[string][]model.Comment `json:"comments"`
}

// SnapshotName implements persist.Snapshotter.
func (s *CommentStore) SnapshotName() string { return CommentSnapshotName }

// Snapshot serializes the loaded comments.
func (s *CommentStore) Snapshot() ([]byte, error) {
	s.mu.RLock()
	payload, err := json.Marshal(commentSnapshot{Comments: s.comments})
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comment snapshot: %w", err)
	}
	return payload, nil
}

// Restore rehydrates the loaded comments.
func (s *CommentStore) Restore(payload []byte) error {
	var snap commentSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("failed to unmarshal comment snapshot: %w", err)
	}
	if snap.Comments == nil {
		snap.Comments = make(map[string][]model.Comment)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = snap.Comments
	return nil
}
