package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/community-hub/internal/model"
)

func TestNextRatingOp(t *testing.T) {
	like := model.RatingLike
	dislike := model.RatingDislike

	// First vote inserts.
	assert.Equal(t, ratingInsert, nextRatingOp(nil, like))
	assert.Equal(t, ratingInsert, nextRatingOp(nil, dislike))

	// Repeating the same vote removes it.
	assert.Equal(t, ratingDelete, nextRatingOp(&like, like))
	assert.Equal(t, ratingDelete, nextRatingOp(&dislike, dislike))

	// The opposite vote overwrites.
	assert.Equal(t, ratingUpdate, nextRatingOp(&like, dislike))
	assert.Equal(t, ratingUpdate, nextRatingOp(&dislike, like))
}
