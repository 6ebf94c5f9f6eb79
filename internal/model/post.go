package model

import (
	"context"
	"time"
)

// Post is a published post as returned by the remote service.
type Post struct {
	ID           string    `json:"_id"`
	Author       Profile   `json:"author"`
	Comments     int       `json:"comments"`
	Content      string    `json:"content"`
	Images       []Image   `json:"images"`
	Tags         []string  `json:"tags"`
	Likes        int       `json:"likes"`
	IsLiked      bool      `json:"isLiked"`
	IsBookmarked bool      `json:"isBookmarked"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PostsPage is one page of a paged post listing.
type PostsPage struct {
	Posts       []Post `json:"posts"`
	Page        int    `json:"page"`
	Limit       int    `json:"limit"`
	TotalPosts  int    `json:"totalPosts"`
	TotalPages  int    `json:"totalPages"`
	HasPrevPage bool   `json:"hasPrevPage"`
	HasNextPage bool   `json:"hasNextPage"`
	PrevPage    int    `json:"prevPage"`
	NextPage    int    `json:"nextPage"`
}

// PostParams contains parameters to create or update a post.
type PostParams struct {
	Content string   `json:"content" validate:"required"`
	Images  []string `json:"images" validate:"required,min=1,dive,required"`
	Tags    []string `json:"tags" validate:"required,min=1,dive,required"`
}

// PostAPI is the remote surface used by the post store.
type PostAPI interface {
	ListPosts(ctx context.Context, page, limit int) (PostsPage, error)
	CreatePost(ctx context.Context, params PostParams) (Post, error)
	GetPost(ctx context.Context, id string) (Post, error)
	UpdatePost(ctx context.Context, id string, params PostParams) (Post, error)
	DeletePost(ctx context.Context, id string) error
	ListPostsByUsername(ctx context.Context, username string, page, limit int) (PostsPage, error)
	ListPostsByTag(ctx context.Context, tag string, page, limit int) (PostsPage, error)
	RemovePostImage(ctx context.Context, postID, imageID string) (Post, error)
	LikePost(ctx context.Context, id string) (bool, error)
}
