package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dtroode/gophsocial/internal/model"
)

type likeResult struct {
	IsLiked bool `json:"isLiked"`
}

type bookmarkResult struct {
	IsBookmarked bool `json:"isBookmarked"`
}

// ListPosts fetches one page of all posts.
func (c *Client) ListPosts(ctx context.Context, page, limit int) (model.PostsPage, error) {
	var out model.PostsPage
	if err := c.do(ctx, http.MethodGet, "/posts", pageQuery(page, limit), nil, &out); err != nil {
		return model.PostsPage{}, err
	}
	return out, nil
}

// CreatePost publishes a new post and returns the created entity.
func (c *Client) CreatePost(ctx context.Context, params model.PostParams) (model.Post, error) {
	var out model.Post
	if err := c.do(ctx, http.MethodPost, "/posts", nil, params, &out); err != nil {
		return model.Post{}, err
	}
	return out, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id string) (model.Post, error) {
	var out model.Post
	if err := c.do(ctx, http.MethodGet, "/posts/"+segment(id), nil, nil, &out); err != nil {
		return model.Post{}, err
	}
	return out, nil
}

// UpdatePost replaces the post's content, images and tags.
func (c *Client) UpdatePost(ctx context.Context, id string, params model.PostParams) (model.Post, error) {
	var out model.Post
	if err := c.do(ctx, http.MethodPatch, "/posts/"+segment(id), nil, params, &out); err != nil {
		return model.Post{}, err
	}
	return out, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+segment(id), nil, nil, nil)
}

// ListPostsByUsername fetches one page of a user's posts.
func (c *Client) ListPostsByUsername(ctx context.Context, username string, page, limit int) (model.PostsPage, error) {
	var out model.PostsPage
	if err := c.do(ctx, http.MethodGet, "/posts/get/u/"+segment(username), pageQuery(page, limit), nil, &out); err != nil {
		return model.PostsPage{}, err
	}
	return out, nil
}

// ListPostsByTag fetches one page of posts carrying tag.
func (c *Client) ListPostsByTag(ctx context.Context, tag string, page, limit int) (model.PostsPage, error) {
	var out model.PostsPage
	if err := c.do(ctx, http.MethodGet, "/posts/get/t/"+segment(tag), pageQuery(page, limit), nil, &out); err != nil {
		return model.PostsPage{}, err
	}
	return out, nil
}

// RemovePostImage detaches an image from a post and returns the updated post.
func (c *Client) RemovePostImage(ctx context.Context, postID, imageID string) (model.Post, error) {
	var out model.Post
	path := fmt.Sprintf("/posts/remove/image/%s/%s", segment(postID), segment(imageID))
	if err := c.do(ctx, http.MethodPatch, path, nil, nil, &out); err != nil {
		return model.Post{}, err
	}
	return out, nil
}

// LikePost toggles the viewer's like and reports whether the post is now liked.
func (c *Client) LikePost(ctx context.Context, id string) (bool, error) {
	var out likeResult
	if err := c.do(ctx, http.MethodPost, "/like/post/"+segment(id), nil, nil, &out); err != nil {
		return false, err
	}
	return out.IsLiked, nil
}

// ListBookmarks fetches the viewer's bookmarked posts.
func (c *Client) ListBookmarks(ctx context.Context) ([]model.Post, error) {
	var out struct {
		BookmarkedPosts []model.Post `json:"bookmarkedPosts"`
	}
	if err := c.do(ctx, http.MethodGet, "/bookmarks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.BookmarkedPosts, nil
}

// BookmarkPost toggles the viewer's bookmark and reports whether the post is now bookmarked.
func (c *Client) BookmarkPost(ctx context.Context, postID string) (bool, error) {
	var out bookmarkResult
	if err := c.do(ctx, http.MethodPost, "/bookmarks/"+segment(postID), nil, nil, &out); err != nil {
		return false, err
	}
	return out.IsBookmarked, nil
}
