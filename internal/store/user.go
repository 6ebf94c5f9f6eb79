package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/dtroode/gophsocial/internal/logger"
	"github.com/dtroode/gophsocial/internal/model"
)

// UserSnapshotName names the persisted user store snapshot.
const UserSnapshotName = "user-state"

// UserStore holds the authenticated session, the viewer's profile and the
// follow graph.
type UserStore struct {
	api      model.UserAPI
	notifier model.Notifier
	logger   *logger.Logger
	opts     options

	mu              sync.RWMutex
	account         *model.Account
	profile         *model.Profile
	currentUser     *model.Account
	isAuthenticated bool
	userName        string
	bookmarkedPosts []model.Post
	profileParams   *model.ProfileParams
	followers       []model.Profile
	following       []model.Profile
	posts           []model.Post
}

// NewUserStore creates a logged-out UserStore.
func NewUserStore(api model.UserAPI, notifier model.Notifier, logger *logger.Logger, opts ...Option) *UserStore {
	s := &UserStore{
		api:      api,
		notifier: notifier,
		logger:   logger.Component("user-store"),
		opts:     buildOptions(opts),
	}
	s.reset()
	return s
}

// reset must be called with mu held (or before the store is shared).
func (s *UserStore) reset() {
	s.account = nil
	s.profile = nil
	s.currentUser = nil
	s.isAuthenticated = false
	s.userName = ""
	s.bookmarkedPosts = []model.Post{}
	s.profileParams = nil
	s.followers = []model.Profile{}
	s.following = []model.Profile{}
	s.posts = []model.Post{}
}

// Logout resets every piece of session state. No remote call is made.
func (s *UserStore) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.logger.Info("session cleared")
}

func (s *UserStore) SetCurrentUser(user model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = &user
}

func (s *UserStore) SetAccount(account model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = &account
}

func (s *UserStore) SetAuthenticated(authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isAuthenticated = authenticated
}

func (s *UserStore) SetUserName(userName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userName = userName
}

func (s *UserStore) SetProfileParams(params model.ProfileParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileParams = &params
}

func (s *UserStore) Account() (model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return model.Account{}, false
	}
	return *s.account, true
}

func (s *UserStore) CurrentUser() (model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return model.Account{}, false
	}
	return *s.currentUser, true
}

func (s *UserStore) Profile() (model.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return model.Profile{}, false
	}
	return *s.profile, true
}

func (s *UserStore) ProfileParams() (model.ProfileParams, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profileParams == nil {
		return model.ProfileParams{}, false
	}
	return *s.profileParams, true
}

func (s *UserStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAuthenticated
}

func (s *UserStore) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

func (s *UserStore) BookmarkedPosts() []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.bookmarkedPosts)
}

func (s *UserStore) Followers() []model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProfiles(s.followers)
}

func (s *UserStore) Following() []model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProfiles(s.following)
}

// Posts returns the viewer's own posts loaded by FetchMyPosts.
func (s *UserStore) Posts() []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts)
}

// FetchProfile loads the viewer's own profile. Errors are returned to the
// caller; the held profile is left as is on failure.
func (s *UserStore) FetchProfile(ctx context.Context) error {
	profile, err := s.api.GetProfile(ctx)
	if err != nil {
		s.logger.Error("failed to fetch profile", "error", err)
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	s.setProfile(ctx, profile)
	return nil
}

// UpdateProfile sends the staged profile parameters and stores the
// server's copy. Errors are returned to the caller.
func (s *UserStore) UpdateProfile(ctx context.Context) error {
	params, ok := s.ProfileParams()
	if !ok {
		return fmt.Errorf("%w: no profile params staged", model.ErrValidation)
	}
	if err := validate.Struct(params); err != nil {
		return validationError(err)
	}

	profile, err := s.api.UpdateProfile(ctx, params)
	if err != nil {
		s.logger.Error("failed to update profile", "error", err)
		return fmt.Errorf("failed to update profile: %w", err)
	}

	s.setProfile(ctx, profile)
	return nil
}

// FetchProfileByUsername looks up the profile of the staged username
// without changing store state. It returns nil when no username is staged.
func (s *UserStore) FetchProfileByUsername(ctx context.Context) (*model.Profile, error) {
	userName := s.UserName()
	if userName == "" {
		s.logger.Error("failed to fetch profile by username: no username staged")
		return nil, nil
	}

	profile, err := s.api.GetProfileByUsername(ctx, userName)
	if err != nil {
		s.logger.Error("failed to fetch profile by username", "username", userName, "error", err)
		return nil, fmt.Errorf("failed to fetch profile of %s: %w", userName, err)
	}

	s.opts.sink.Remember(ctx, profile)
	return &profile, nil
}

// UpdateCoverImage points the viewer's cover image at url. An empty url is
// a no-op.
func (s *UserStore) UpdateCoverImage(ctx context.Context, url string) bool {
	if url == "" {
		return false
	}

	profile, err := s.api.UpdateCoverImage(ctx, url)
	if err != nil {
		s.fail("Failed to update cover image", "update cover image", err)
		return false
	}

	s.setProfile(ctx, profile)
	s.notifier.Success("Cover image updated")
	return true
}

// FetchUserFollowers replaces the followers of the staged username.
func (s *UserStore) FetchUserFollowers(ctx context.Context) bool {
	userName, ok := s.requireUserName("fetch followers")
	if !ok {
		return false
	}

	followers, err := s.api.ListFollowers(ctx, userName)
	if err != nil {
		s.fail("Failed to fetch followers", "fetch followers", err, "username", userName)
		return false
	}

	s.mu.Lock()
	s.followers = nonNilProfiles(followers)
	s.mu.Unlock()

	s.opts.sink.Remember(ctx, followers...)
	s.logger.Debug("fetched followers", "username", userName, "count", len(followers))
	return true
}

// FetchUserFollowing replaces the profiles the staged username follows.
func (s *UserStore) FetchUserFollowing(ctx context.Context) bool {
	userName, ok := s.requireUserName("fetch following")
	if !ok {
		return false
	}

	following, err := s.api.ListFollowing(ctx, userName)
	if err != nil {
		s.fail("Failed to fetch following", "fetch following", err, "username", userName)
		return false
	}

	s.mu.Lock()
	s.following = nonNilProfiles(following)
	s.mu.Unlock()

	s.opts.sink.Remember(ctx, following...)
	s.logger.Debug("fetched following", "username", userName, "count", len(following))
	return true
}

// FollowUser toggles following accountID and applies the server's answer
// to the follow graph. The viewer's following count moves only when the
// following list does.
func (s *UserStore) FollowUser(ctx context.Context, accountID string) bool {
	following, err := s.api.Follow(ctx, accountID)
	if err != nil {
		s.fail("Failed to follow user", "follow user", err, "account_id", accountID)
		return false
	}

	matches := func(p model.Profile) bool { return p.AccountID() == accountID }

	s.mu.Lock()
	wasFollowing := lo.ContainsBy(s.following, matches)
	switch {
	case following && !wasFollowing:
		target, ok := lo.Find(s.followers, matches)
		if !ok {
			target = model.Profile{Account: model.Account{ID: accountID}}
		}
		target.IsFollowing = true
		s.following = append(s.following, target)
	case !following && wasFollowing:
		s.following = lo.Reject(s.following, func(p model.Profile, _ int) bool { return matches(p) })
	}
	for i := range s.followers {
		if matches(s.followers[i]) {
			s.followers[i].IsFollowing = following
		}
	}
	if s.profile != nil {
		s.profile.FollowingCount = toggleCount(s.profile.FollowingCount, wasFollowing, following)
	}
	s.mu.Unlock()

	if following {
		s.notifier.Success("User followed")
	} else {
		s.notifier.Success("User unfollowed")
	}
	return true
}

// FetchBookmarkedPosts replaces the bookmarked posts.
func (s *UserStore) FetchBookmarkedPosts(ctx context.Context) bool {
	posts, err := s.api.ListBookmarks(ctx)
	if err != nil {
		s.fail("Failed to fetch bookmarks", "fetch bookmarks", err)
		return false
	}

	s.mu.Lock()
	s.bookmarkedPosts = clonePosts(posts)
	if s.bookmarkedPosts == nil {
		s.bookmarkedPosts = []model.Post{}
	}
	s.mu.Unlock()

	s.opts.sink.Remember(ctx, postAuthors(posts)...)
	return true
}

// BookmarkPost toggles the viewer's bookmark on post and updates the
// bookmarked posts from the server's answer.
func (s *UserStore) BookmarkPost(ctx context.Context, post model.Post) bool {
	bookmarked, err := s.api.BookmarkPost(ctx, post.ID)
	if err != nil {
		s.fail("Failed to bookmark post", "bookmark post", err, "post_id", post.ID)
		return false
	}

	s.mu.Lock()
	s.bookmarkedPosts = lo.Reject(s.bookmarkedPosts, func(p model.Post, _ int) bool { return p.ID == post.ID })
	if bookmarked {
		post.IsBookmarked = true
		s.bookmarkedPosts = append(s.bookmarkedPosts, post)
	}
	s.mu.Unlock()

	if bookmarked {
		s.notifier.Success("Post bookmarked")
	} else {
		s.notifier.Success("Bookmark removed")
	}
	return true
}

// FetchMyPosts loads one page of the staged username's posts into the
// store's own posts.
func (s *UserStore) FetchMyPosts(ctx context.Context, page, limit int) bool {
	userName, ok := s.requireUserName("fetch own posts")
	if !ok {
		return false
	}

	result, err := s.api.ListPostsByUsername(ctx, userName, page, limit)
	if err != nil {
		s.fail("Failed to fetch post", "fetch own posts", err, "username", userName)
		return false
	}

	s.mu.Lock()
	s.posts = clonePosts(result.Posts)
	if s.posts == nil {
		s.posts = []model.Post{}
	}
	s.mu.Unlock()
	return true
}

func (s *UserStore) setProfile(ctx context.Context, profile model.Profile) {
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
	s.opts.sink.Remember(ctx, profile)
}

func (s *UserStore) requireUserName(action string) (string, bool) {
	userName := s.UserName()
	if userName == "" {
		s.logger.Warn("no username staged", "action", action)
		s.notifier.Warning("Select a user first")
		return "", false
	}
	return userName, true
}

func (s *UserStore) fail(msg, action string, err error, args ...any) {
	s.logger.Error("failed to "+action, append(args, "error", err)...)
	s.notifier.Error(msg)
}

func nonNilProfiles(profiles []model.Profile) []model.Profile {
	if profiles == nil {
		return []model.Profile{}
	}
	return cloneProfiles(profiles)
}

type userSnapshot struct {
	Account         *model.Account `json:"account"`
	Profile         *model.Profile `json:"profile"`
	IsAuthenticated bool           `json:"isAuthenticated"`
	BookmarkedPosts []model.Post   `json:"bookmarkedPosts"`
}

// SnapshotName implements persist.Snapshotter.
func (s *UserStore) SnapshotName() string { return UserSnapshotName }

// Snapshot serializes account, profile, authentication flag and bookmarks.
// Everything else lives for the session only.
func (s *UserStore) Snapshot() ([]byte, error) {
	s.mu.RLock()
	snap := userSnapshot{
		Account:         s.account,
		Profile:         s.profile,
		IsAuthenticated: s.isAuthenticated,
		BookmarkedPosts: s.bookmarkedPosts,
	}
	payload, err := json.Marshal(snap)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user snapshot: %w", err)
	}
	return payload, nil
}

// Restore rehydrates the persisted subset of the store.
func (s *UserStore) Restore(payload []byte) error {
	var snap userSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("failed to unmarshal user snapshot: %w", err)
	}
	if snap.BookmarkedPosts == nil {
		snap.BookmarkedPosts = []model.Post{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = snap.Account
	s.profile = snap.Profile
	s.isAuthenticated = snap.IsAuthenticated
	s.bookmarkedPosts = snap.BookmarkedPosts
	return nil
}
