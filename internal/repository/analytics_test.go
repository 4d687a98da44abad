package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMatchUser(t *testing.T) {
	assert.Nil(t, matchUser(nil))

	id := bson.NewObjectID()
	stages := matchUser(&id)
	require.Len(t, stages, 1)
	assert.Equal(t, bson.M{"$match": bson.M{"user": id}}, stages[0])
}

func TestLookupAnswerQuestion(t *testing.T) {
	require.Len(t, lookupAnswerQuestion, 3)
	assert.Equal(t, "$answers", lookupAnswerQuestion[0]["$unwind"])

	lookup, ok := lookupAnswerQuestion[1]["$lookup"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, QuestionsCollection, lookup["from"])
	assert.Equal(t, "answers.questionId", lookup["localField"])
	assert.Equal(t, "id", lookup["foreignField"])

	// Answers whose question was deleted still count.
	unwind, ok := lookupAnswerQuestion[2]["$unwind"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, true, unwind["preserveNullAndEmptyArrays"])
}
