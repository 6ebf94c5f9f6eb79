// Package store holds the client-side state containers that mirror the
// remote service: the authenticated user, known posts and their comments.
//
// Every container is owned by the application's composition root and is safe
// for concurrent use. A mutation is applied locally only after the server has
// confirmed it, using the entity the server sent back.
package store

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/dtroode/gophsocial/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = validator.New(validator.WithRequiredStructEnabled())

// Option configures a store.
type Option func(*options)

type options struct {
	sink model.ProfileSink
}

// WithProfileSink forwards every observed profile to sink.
func WithProfileSink(sink model.ProfileSink) Option {
	return func(o *options) { o.sink = sink }
}

func buildOptions(opts []Option) options {
	o := options{sink: noopSink{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type noopSink struct{}

func (noopSink) Remember(context.Context, ...model.Profile) {}

func postAuthors(posts []model.Post) []model.Profile {
	out := make([]model.Profile, 0, len(posts))
	for _, p := range posts {
		if p.Author.AccountID() != "" {
			out = append(out, p.Author)
		}
	}
	return out
}

func validationError(err error) error {
	return fmt.Errorf("%w: %s", model.ErrValidation, err.Error())
}

// toggleCount moves a counter with a boolean flag transition.
func toggleCount(count int, was, now bool) int {
	switch {
	case now && !was:
		return count + 1
	case !now && was && count > 0:
		return count - 1
	default:
		return count
	}
}

func clonePosts(posts []model.Post) []model.Post {
	if posts == nil {
		return nil
	}
	out := make([]model.Post, len(posts))
	copy(out, posts)
	return out
}

func cloneProfiles(profiles []model.Profile) []model.Profile {
	if profiles == nil {
		return nil
	}
	out := make([]model.Profile, len(profiles))
	copy(out, profiles)
	return out
}
