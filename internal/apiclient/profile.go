package apiclient

import (
	"context"
	"net/http"

	"github.com/dtroode/gophsocial/internal/model"
)

// followingRoute is the listing path the service exposes for followed users.
const followingRoute = "/follow/list/followering/"

// GetProfile fetches the viewer's own profile.
func (c *Client) GetProfile(ctx context.Context) (model.Profile, error) {
	var out model.Profile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, nil, &out); err != nil {
		return model.Profile{}, err
	}
	return out, nil
}

// UpdateProfile sends staged profile parameters and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, params model.ProfileParams) (model.Profile, error) {
	var out model.Profile
	if err := c.do(ctx, http.MethodPatch, "/profile", nil, params, &out); err != nil {
		return model.Profile{}, err
	}
	return out, nil
}

// GetProfileByUsername fetches another user's profile.
func (c *Client) GetProfileByUsername(ctx context.Context, username string) (model.Profile, error) {
	var out model.Profile
	if err := c.do(ctx, http.MethodGet, "/profile/u/"+segment(username), nil, nil, &out); err != nil {
		return model.Profile{}, err
	}
	return out, nil
}

// UpdateCoverImage points the viewer's cover image at url.
func (c *Client) UpdateCoverImage(ctx context.Context, url string) (model.Profile, error) {
	var out model.Profile
	body := struct {
		CoverImage string `json:"coverImage"`
	}{CoverImage: url}
	if err := c.do(ctx, http.MethodPatch, "/profile/cover-image", nil, body, &out); err != nil {
		return model.Profile{}, err
	}
	return out, nil
}

// ListFollowers fetches the followers of username.
func (c *Client) ListFollowers(ctx context.Context, username string) ([]model.Profile, error) {
	var out struct {
		Followers []model.Profile `json:"followers"`
	}
	if err := c.do(ctx, http.MethodGet, "/follow/list/followers/"+segment(username), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Followers, nil
}

// ListFollowing fetches the profiles username follows.
func (c *Client) ListFollowing(ctx context.Context, username string) ([]model.Profile, error) {
	var out struct {
		Following []model.Profile `json:"following"`
	}
	if err := c.do(ctx, http.MethodGet, followingRoute+segment(username), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Following, nil
}

// Follow toggles following accountID and reports whether the viewer now follows it.
func (c *Client) Follow(ctx context.Context, accountID string) (bool, error) {
	var out struct {
		Following bool `json:"following"`
	}
	if err := c.do(ctx, http.MethodPost, "/follow/"+segment(accountID), nil, nil, &out); err != nil {
		return false, err
	}
	return out.Following, nil
}
