package model

import (
	"context"
	"time"
)

// Profile is a user's public-facing data.
type Profile struct {
	ID             string    `json:"_id"`
	Account        Account   `json:"account"`
	Bio            string    `json:"bio"`
	CountryCode    string    `json:"countryCode"`
	CoverImage     Image     `json:"coverImage"`
	DOB            time.Time `json:"dob"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	FollowersCount int       `json:"followersCount"`
	FollowingCount int       `json:"followingCount"`
	IsFollowing    bool      `json:"isFollowing"`
	Location       string    `json:"location"`
	PhoneNumber    string    `json:"phoneNumber"`
	Owner          string    `json:"owner"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AccountID returns the id of the owning account, falling back to Owner
// when the account is not expanded in the response.
func (p Profile) AccountID() string {
	if p.Account.ID != "" {
		return p.Account.ID
	}
	return p.Owner
}

// ProfileParams are the staged values sent by a profile update.
type ProfileParams struct {
	Bio         string    `json:"bio"`
	CountryCode string    `json:"countryCode" validate:"omitempty,max=4"`
	DOB         time.Time `json:"dob"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Location    string    `json:"location"`
	PhoneNumber string    `json:"phoneNumber" validate:"omitempty,numeric"`
}

// UserAPI is the remote surface used by the user store.
type UserAPI interface {
	GetProfile(ctx context.Context) (Profile, error)
	UpdateProfile(ctx context.Context, params ProfileParams) (Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (Profile, error)
	UpdateCoverImage(ctx context.Context, url string) (Profile, error)
	ListFollowers(ctx context.Context, username string) ([]Profile, error)
	ListFollowing(ctx context.Context, username string) ([]Profile, error)
	Follow(ctx context.Context, accountID string) (bool, error)
	ListBookmarks(ctx context.Context) ([]Post, error)
	BookmarkPost(ctx context.Context, postID string) (bool, error)
	ListPostsByUsername(ctx context.Context, username string, page, limit int) (PostsPage, error)
}

// ProfileSink receives every profile a store observes.
type ProfileSink interface {
	Remember(ctx context.Context, profiles ...Profile)
}
