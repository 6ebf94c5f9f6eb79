package model

import (
	"context"
	"time"
)

// Comment is a comment left on a post.
type Comment struct {
	ID        string    `json:"_id"`
	Author    Profile   `json:"author"`
	Content   string    `json:"content"`
	IsLiked   bool      `json:"isLiked"`
	Likes     int       `json:"likes"`
	PostID    string    `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentAPI is the remote surface used by the comment store.
type CommentAPI interface {
	ListComments(ctx context.Context, postID string) ([]Comment, error)
	AddComment(ctx context.Context, postID, content string) (Comment, error)
	UpdateComment(ctx context.Context, id, content string) (Comment, error)
	DeleteComment(ctx context.Context, id string) error
	LikeComment(ctx context.Context, id string) (bool, error)
}
