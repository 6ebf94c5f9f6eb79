package feed

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/dtroode/gophsocial/internal/model"
)

// Item is a post ready for display.
type Item struct {
	Post           model.Post
	Author         model.Profile
	AuthorResolved bool
}

// Resolver looks up profiles by account id.
type Resolver interface {
	Resolve(ctx context.Context, accountID string) (model.Profile, bool)
}

// Assembler derives timelines from post collections. It never mutates its
// inputs.
type Assembler struct {
	resolver Resolver
}

func NewAssembler(resolver Resolver) *Assembler {
	return &Assembler{resolver: resolver}
}

// Home returns the posts of followed authors plus the viewer's own. When
// the viewer follows nobody every post is returned.
func (a *Assembler) Home(ctx context.Context, posts []model.Post, viewerID string, following []model.Profile) []Item {
	if len(following) == 0 {
		return a.items(ctx, posts)
	}

	authors := followedIDs(following)
	if viewerID != "" {
		authors[viewerID] = struct{}{}
	}
	return a.items(ctx, byAuthors(posts, authors))
}

// Following returns only the posts of followed authors.
func (a *Assembler) Following(ctx context.Context, posts []model.Post, following []model.Profile) []Item {
	return a.items(ctx, byAuthors(posts, followedIDs(following)))
}

// Bookmarks merges locally flagged posts with the server's bookmark list.
// The server copy wins for posts present in both.
func (a *Assembler) Bookmarks(ctx context.Context, posts []model.Post, bookmarked []model.Post) []Item {
	flagged := lo.Filter(posts, func(p model.Post, _ int) bool { return p.IsBookmarked })
	return a.items(ctx, append(append([]model.Post{}, bookmarked...), flagged...))
}

func (a *Assembler) items(ctx context.Context, posts []model.Post) []Item {
	unique := lo.UniqBy(posts, func(p model.Post) string { return p.ID })
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].CreatedAt.After(unique[j].CreatedAt)
	})

	return lo.Map(unique, func(p model.Post, _ int) Item {
		item := Item{Post: p, Author: p.Author}
		if a.resolver != nil {
			if author, ok := a.resolver.Resolve(ctx, p.Author.AccountID()); ok {
				item.Author = author
				item.AuthorResolved = true
			}
		}
		return item
	})
}

func followedIDs(following []model.Profile) map[string]struct{} {
	ids := make(map[string]struct{}, len(following))
	for _, p := range following {
		if id := p.AccountID(); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func byAuthors(posts []model.Post, authors map[string]struct{}) []model.Post {
	return lo.Filter(posts, func(p model.Post, _ int) bool {
		_, ok := authors[p.Author.AccountID()]
		return ok
	})
}
