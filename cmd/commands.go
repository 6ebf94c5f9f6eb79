package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"github.com/dtroode/gophsocial/internal/feed"
	"github.com/dtroode/gophsocial/internal/model"
	"github.com/dtroode/gophsocial/internal/notify"
	"github.com/dtroode/gophsocial/internal/server"
)

var errUsage = errors.New("invalid usage")

type command func(ctx context.Context, args []string) error

func (a *app) commands() map[string]command {
	return map[string]command{
		"feed":      a.feed,
		"post":      a.post,
		"like":      a.like,
		"bookmark":  a.bookmark,
		"delete":    a.deletePost,
		"comments":  a.listComments,
		"comment":   a.comment,
		"profile":   a.profile,
		"followers": a.followers,
		"following": a.following,
		"follow":    a.follow,
		"bookmarks": a.bookmarks,
		"logout":    a.logout,
		"watch":     a.watch,

		"posts":          a.filteredPosts,
		"edit":           a.editPost,
		"remove-image":   a.removeImage,
		"my-posts":       a.myPosts,
		"cover":          a.cover,
		"update-profile": a.updateProfile,
	}
}

// run executes one command and flushes the stores afterwards.
func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := a.commands()[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	runErr := cmd(ctx, args[1:])
	if runErr != nil {
		if n, ok := a.recorder.Last(); ok {
			a.logger.Debug("last notification", "level", n.Level, "message", n.Message)
		}
	}
	if a.discard {
		return runErr
	}
	if err := a.persister.SaveAll(ctx); err != nil {
		a.logger.Error("failed to save session", "error", err)
	}
	return runErr
}

func (a *app) requireAuth() error {
	if !a.users.IsAuthenticated() {
		a.notifier.Warning("Please log in first")
		return model.ErrUnauthorized
	}
	return nil
}

// failed turns a store's false result into an error for the exit code.
func failed(ok bool, action string) error {
	if ok {
		return nil
	}
	return fmt.Errorf("failed to %s", action)
}

func oneArg(args []string, name string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("%w: expected %s", errUsage, name)
	}
	return args[0], nil
}

func splitList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(v string, _ int) string { return strings.TrimSpace(v) }))
}

func (a *app) feed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	page := fs.Int("page", 1, "page to load")
	limit := fs.Int("limit", a.cfg.Feed.PageLimit, "posts per page")
	view := fs.String("view", "home", "home, following or all")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if !a.posts.FetchAllPosts(ctx, *page, *limit) {
		return failed(false, "fetch posts")
	}

	posts := a.posts.Posts()
	viewer, _ := a.users.Account()
	following := a.users.Following()
	if *view != "all" && a.users.UserName() != "" && len(following) == 0 {
		// best effort, an empty graph falls back to every post
		a.users.FetchUserFollowing(ctx)
		following = a.users.Following()
	}

	var items []feed.Item
	switch *view {
	case "home":
		items = a.assembler.Home(ctx, posts, viewer.ID, following)
	case "following":
		items = a.assembler.Following(ctx, posts, following)
	case "all":
		items = a.assembler.Home(ctx, posts, viewer.ID, nil)
	default:
		return fmt.Errorf("%w: unknown view %q", errUsage, *view)
	}

	a.printItems(items)
	if meta, ok := a.posts.PostData(); ok {
		fmt.Fprintf(a.out, "page %d of %d (%d posts)\n", meta.Page, meta.TotalPages, meta.TotalPosts)
	}
	return nil
}

func (a *app) post(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	content := fs.String("content", "", "post text")
	images := fs.String("images", "", "comma separated image urls")
	tags := fs.String("tags", "", "comma separated tags")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	return failed(a.posts.CreatePost(ctx, *content, splitList(*images), splitList(*tags)), "create post")
}

func (a *app) filteredPosts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("posts", flag.ContinueOnError)
	user := fs.String("user", "", "author username")
	tag := fs.String("tag", "", "tag")
	page := fs.Int("page", 1, "page to load")
	limit := fs.Int("limit", a.cfg.Feed.PageLimit, "posts per page")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var result model.PostsPage
	var ok bool
	switch {
	case *user != "" && *tag == "":
		result, ok = a.posts.FetchPostsByUsername(ctx, *user, *page, *limit)
	case *tag != "" && *user == "":
		result, ok = a.posts.FetchPostsByTag(ctx, *tag, *page, *limit)
	default:
		return fmt.Errorf("%w: expected exactly one of -user or -tag", errUsage)
	}
	if !ok {
		return failed(false, "fetch posts")
	}

	a.printItems(a.assembler.Home(ctx, result.Posts, "", nil))
	return nil
}

func (a *app) editPost(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: expected POST_ID", errUsage)
	}
	id := args[0]
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	content := fs.String("content", "", "post text")
	images := fs.String("images", "", "comma separated image urls")
	tags := fs.String("tags", "", "comma separated tags")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	return failed(a.posts.UpdatePost(ctx, id, *content, splitList(*images), splitList(*tags)), "update post")
}

func (a *app) removeImage(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: expected POST_ID IMAGE_ID", errUsage)
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	return failed(a.posts.RemovePostImage(ctx, args[0], args[1]), "remove post image")
}

func (a *app) myPosts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("my-posts", flag.ContinueOnError)
	page := fs.Int("page", 1, "page to load")
	limit := fs.Int("limit", a.cfg.Feed.PageLimit, "posts per page")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	if !a.users.FetchMyPosts(ctx, *page, *limit) {
		return failed(false, "fetch own posts")
	}
	a.printItems(a.assembler.Home(ctx, a.users.Posts(), "", nil))
	return nil
}

func (a *app) cover(ctx context.Context, args []string) error {
	url, err := oneArg(args, "IMAGE_URL")
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	return failed(a.users.UpdateCoverImage(ctx, url), "update cover image")
}

func (a *app) updateProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update-profile", flag.ContinueOnError)
	var params model.ProfileParams
	fs.StringVar(&params.FirstName, "first-name", "", "first name")
	fs.StringVar(&params.LastName, "last-name", "", "last name")
	fs.StringVar(&params.Bio, "bio", "", "bio")
	fs.StringVar(&params.Location, "location", "", "location")
	fs.StringVar(&params.CountryCode, "country-code", "", "phone country code")
	fs.StringVar(&params.PhoneNumber, "phone", "", "phone number")
	dob := fs.String("dob", "", "date of birth, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *dob != "" {
		t, err := time.Parse(time.DateOnly, *dob)
		if err != nil {
			return fmt.Errorf("%w: bad -dob: %v", errUsage, err)
		}
		params.DOB = t
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	a.users.SetProfileParams(params)
	if err := a.users.UpdateProfile(ctx); err != nil {
		if errors.Is(err, model.ErrValidation) {
			a.notifier.Warning("Enter the necessary fields data")
		} else {
			a.notifier.Error("Failed to update profile")
		}
		return err
	}
	a.notifier.Success("Profile updated")
	p, _ := a.users.Profile()
	a.printProfile(p)
	return nil
}

func (a *app) like(ctx context.Context, args []string) error {
	id, err := oneArg(args, "POST_ID")
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	return failed(a.posts.LikePost(ctx, id), "like post")
}

func (a *app) bookmark(ctx context.Context, args []string) error {
	id, err := oneArg(args, "POST_ID")
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	post, ok := a.posts.Post(id)
	if !ok {
		if post, ok = a.posts.FetchPostByID(ctx, id); !ok {
			return failed(false, "load post")
		}
	}
	if !a.users.BookmarkPost(ctx, post) {
		return failed(false, "bookmark post")
	}

	bookmarked := lo.ContainsBy(a.users.BookmarkedPosts(), func(p model.Post) bool { return p.ID == id })
	a.posts.MarkBookmarked(id, bookmarked)
	return nil
}

func (a *app) deletePost(ctx context.Context, args []string) error {
	id, err := oneArg(args, "POST_ID")
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	return failed(a.posts.DeletePost(ctx, id), "delete post")
}

func (a *app) listComments(ctx context.Context, args []string) error {
	postID, err := oneArg(args, "POST_ID")
	if err != nil {
		return err
	}
	if !a.comments.FetchPostComments(ctx, postID) {
		return failed(false, "fetch comments")
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, c := range a.comments.Comments(postID) {
		author := a.authorName(ctx, c.Author)
		fmt.Fprintf(w, "%s\t%s\t%s\t♥ %d\n", c.ID, author, c.Content, c.Likes)
	}
	return w.Flush()
}

func (a *app) comment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: expected comment add|edit|delete|like", errUsage)
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	action, id, text := args[0], args[1], strings.Join(args[2:], " ")
	switch action {
	case "add":
		a.comments.SetContent(text)
		return failed(a.comments.AddComment(ctx, id), "add comment")
	case "edit":
		a.comments.SetContent(text)
		return failed(a.comments.UpdateComment(ctx, id), "update comment")
	case "delete":
		return failed(a.comments.DeleteComment(ctx, id), "delete comment")
	case "like":
		return failed(a.comments.LikeComment(ctx, id), "like comment")
	default:
		return fmt.Errorf("%w: unknown comment action %q", errUsage, action)
	}
}

func (a *app) profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if err := a.requireAuth(); err != nil {
			return err
		}
		if err := a.users.FetchProfile(ctx); err != nil {
			return err
		}
		p, _ := a.users.Profile()
		a.printProfile(p)
		return nil
	}

	a.users.SetUserName(args[0])
	p, err := a.users.FetchProfileByUsername(ctx)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: expected USERNAME", errUsage)
	}
	a.printProfile(*p)
	return nil
}

func (a *app) followers(ctx context.Context, args []string) error {
	username, err := oneArg(args, "USERNAME")
	if err != nil {
		return err
	}
	a.users.SetUserName(username)
	if !a.users.FetchUserFollowers(ctx) {
		return failed(false, "fetch followers")
	}
	a.printProfiles(a.users.Followers())
	return nil
}

func (a *app) following(ctx context.Context, args []string) error {
	username, err := oneArg(args, "USERNAME")
	if err != nil {
		return err
	}
	a.users.SetUserName(username)
	if !a.users.FetchUserFollowing(ctx) {
		return failed(false, "fetch following")
	}
	a.printProfiles(a.users.Following())
	return nil
}

func (a *app) follow(ctx context.Context, args []string) error {
	accountID, err := oneArg(args, "ACCOUNT_ID")
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	return failed(a.users.FollowUser(ctx, accountID), "follow user")
}

func (a *app) bookmarks(ctx context.Context, _ []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if !a.users.FetchBookmarkedPosts(ctx) {
		return failed(false, "fetch bookmarks")
	}
	a.printItems(a.assembler.Bookmarks(ctx, a.posts.Posts(), a.users.BookmarkedPosts()))
	return nil
}

// logout clears the session and drops every saved snapshot.
func (a *app) logout(ctx context.Context, _ []string) error {
	a.users.Logout()
	a.client.SetToken("")
	if err := a.persister.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to drop saved session: %w", err)
	}
	a.discard = true
	a.notifier.Info("Logged out")
	fmt.Fprintln(a.out, "logged out")
	return nil
}

// watch keeps the feed fresh and flushes snapshots until ctx is cancelled.
func (a *app) watch(ctx context.Context, _ []string) error {
	scheduler, err := a.persister.Schedule(ctx, a.cfg.Persistence.Schedule)
	if err != nil {
		return err
	}
	_, err = scheduler.AddFunc(a.cfg.Feed.RefreshSchedule, func() {
		a.posts.FetchAllPosts(ctx, 1, a.cfg.Feed.PageLimit)
		if a.users.IsAuthenticated() {
			a.users.FetchBookmarkedPosts(ctx)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh %q: %w", a.cfg.Feed.RefreshSchedule, err)
	}

	a.posts.FetchAllPosts(ctx, 1, a.cfg.Feed.PageLimit)
	scheduler.Start()

	var wg sync.WaitGroup
	var metricsServer *server.MetricsServer
	if a.cfg.Metrics.Addr != "" {
		metricsServer = server.NewMetricsServer(a.cfg.Metrics.Addr, a.registry)
		sl := server.NewSecurityLayer(a.cfg.Metrics.EnableHTTPS, a.cfg.Metrics.CertFileName, a.cfg.Metrics.PrivateKeyFileName)

		wg.Add(1)
		go func() {
			defer wg.Done()
			a.logger.Info("Starting metrics server on", "address", metricsServer.Address())
			if err := metricsServer.Start(sl); err != nil {
				a.logger.Error("failed to start metrics server", "error", err)
			}
		}()
	}

	<-ctx.Done()
	a.logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	<-scheduler.Stop().Done()
	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("error during metrics server shutdown", "error", err, "address", metricsServer.Address())
		}
	}
	wg.Wait()

	counts := lo.CountValuesBy(a.recorder.All(), func(n notify.Notification) notify.Level { return n.Level })
	a.logger.Info("watch stopped", "errors", counts[notify.LevelError], "warnings", counts[notify.LevelWarning])

	// ctx is already cancelled, the final flush needs its own
	if err := a.persister.SaveAll(shutdownCtx); err != nil {
		a.logger.Error("failed to save session on shutdown", "error", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}

func (a *app) authorName(ctx context.Context, author model.Profile) string {
	if p, ok := a.directory.Resolve(ctx, author.AccountID()); ok {
		author = p
	}
	if author.Account.Username != "" {
		return "@" + author.Account.Username
	}
	return author.AccountID()
}

func (a *app) printItems(items []feed.Item) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "no posts")
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, it := range items {
		author := it.Author.AccountID()
		if it.Author.Account.Username != "" {
			author = "@" + it.Author.Account.Username
		}
		marks := ""
		if it.Post.IsLiked {
			marks += "♥"
		}
		if it.Post.IsBookmarked {
			marks += "★"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d likes\t%d comments\t%s\n",
			it.Post.ID, bold(author), it.Post.Content, it.Post.Likes, it.Post.Comments, marks)
	}
	_ = w.Flush()
}

func (a *app) printProfile(p model.Profile) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "username\t@%s\n", p.Account.Username)
	fmt.Fprintf(w, "name\t%s %s\n", p.FirstName, p.LastName)
	fmt.Fprintf(w, "bio\t%s\n", p.Bio)
	fmt.Fprintf(w, "location\t%s\n", p.Location)
	fmt.Fprintf(w, "followers\t%d\n", p.FollowersCount)
	fmt.Fprintf(w, "following\t%d\n", p.FollowingCount)
	_ = w.Flush()
}

func (a *app) printProfiles(profiles []model.Profile) {
	if len(profiles) == 0 {
		fmt.Fprintln(a.out, "nobody yet")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, p := range profiles {
		following := ""
		if p.IsFollowing {
			following = "following"
		}
		fmt.Fprintf(w, "%s\t@%s\t%s %s\t%s\n", p.AccountID(), p.Account.Username, p.FirstName, p.LastName, following)
	}
	_ = w.Flush()
}
