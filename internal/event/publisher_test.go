package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledPublisher(t *testing.T) {
	p, err := NewEventPublisher("", "proviquiz.events")
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	assert.NoError(t, p.PublishExamEvent(NewExamSubmittedEvent("e1", "u1", "timed", 14, 20, 600, true)))
	assert.NoError(t, p.PublishQuestionEvent(NewQuestionEvent(EventTypeQuestionCreated, []int{1}, nil)))
	assert.NoError(t, p.PublishUserEvent(NewUserEvent(EventTypeUserRegistered, "u1", "a@b.c", "student", "")))
	assert.NoError(t, p.Close())
}

func TestExamEventPayload(t *testing.T) {
	ev := NewExamSubmittedEvent("e1", "u1", "practice", 12, 20, 300, true)

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, EventTypeExamSubmitted, decoded["eventType"])
	assert.Equal(t, "e1", decoded["examId"])
	assert.Equal(t, float64(12), decoded["score"])
	assert.Equal(t, true, decoded["passed"])
	assert.NotZero(t, decoded["timestamp"])
}
