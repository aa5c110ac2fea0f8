package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divinecoid/sabkabazaar/internal/model"
	"github.com/divinecoid/sabkabazaar/internal/testutil"
)

func TestReviewIsUniquePerUserAndProduct(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := NewReviewService(gdb)
	ctx := context.Background()
	user := testutil.CreateUser(t, gdb, testutil.Email(1), false)
	other := testutil.CreateUser(t, gdb, testutil.Email(2), false)
	p := testutil.CreateProduct(t, gdb, "Book", 39900, 10)

	_, err := svc.Create(ctx, user.ID, p.ID, 5, "Loved it")
	require.NoError(t, err)

	_, err = svc.Create(ctx, user.ID, p.ID, 1, "Changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	_, err = svc.Create(ctx, other.ID, p.ID, 4, "Good")
	require.NoError(t, err)

	reviews, err := svc.ListForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestReviewValidation(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := NewReviewService(gdb)
	ctx := context.Background()
	user := testutil.CreateUser(t, gdb, testutil.Email(1), false)
	p := testutil.CreateProduct(t, gdb, "Book", 39900, 10)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(ctx, user.ID, p.ID, rating, "")
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), rating)
	}

	_, err := svc.Create(ctx, user.ID, "missing", 3, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListForProduct(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewEditAndDeleteAreAuthorOnly(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := NewReviewService(gdb)
	ctx := context.Background()
	author := testutil.CreateUser(t, gdb, testutil.Email(1), false)
	other := testutil.CreateUser(t, gdb, testutil.Email(2), false)
	p := testutil.CreateProduct(t, gdb, "Book", 39900, 10)

	review, err := svc.Create(ctx, author.ID, p.ID, 3, "ok")
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, review.ID, 1, "bad")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, review.ID), ErrNotFound)

	updated, err := svc.Update(ctx, author.ID, review.ID, 4, "better on reread")
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, "better on reread", updated.Comment)

	require.NoError(t, svc.Delete(ctx, author.ID, review.ID))
	assert.Equal(t, int64(0), testutil.Count(t, gdb, &model.Review{}))
}
