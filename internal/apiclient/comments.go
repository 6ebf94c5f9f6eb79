package apiclient

import (
	"context"
	"net/http"

	"github.com/dtroode/gophsocial/internal/model"
)

type commentBody struct {
	Content string `json:"content"`
}

// ListComments fetches the comments of a post.
func (c *Client) ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	var out struct {
		Comments []model.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/comments/post/"+segment(postID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

// AddComment posts a comment and returns the created entity.
func (c *Client) AddComment(ctx context.Context, postID, content string) (model.Comment, error) {
	var out model.Comment
	if err := c.do(ctx, http.MethodPost, "/comments/post/"+segment(postID), nil, commentBody{Content: content}, &out); err != nil {
		return model.Comment{}, err
	}
	return out, nil
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, id, content string) (model.Comment, error) {
	var out model.Comment
	if err := c.do(ctx, http.MethodPatch, "/comments/"+segment(id), nil, commentBody{Content: content}, &out); err != nil {
		return model.Comment{}, err
	}
	return out, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+segment(id), nil, nil, nil)
}

// LikeComment toggles the viewer's like on a comment.
func (c *Client) LikeComment(ctx context.Context, id string) (bool, error) {
	var out likeResult
	if err := c.do(ctx, http.MethodPost, "/like/comment/"+segment(id), nil, nil, &out); err != nil {
		return false, err
	}
	return out.IsLiked, nil
}
