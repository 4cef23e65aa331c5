package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingAssignment(t *testing.T) *FormAssignment {
	t.Helper()
	assignment, err := NewFormAssignment(
		uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	return assignment
}

func TestNewFormAssignment(t *testing.T) {
	t.Parallel()

	assignment := newPendingAssignment(t)

	assert.Equal(t, AssignmentStatusPending, assignment.Status)
	assert.Len(t, assignment.Token, 64, "32 random bytes hex encoded")
	assert.WithinDuration(t,
		assignment.CreatedAt.Add(AssignmentTokenLifetime),
		assignment.TokenExpiresAt,
		time.Second)

	// Tokens must be unique across assignments.
	other := newPendingAssignment(t)
	assert.NotEqual(t, assignment.Token, other.Token)
}

func TestAssignmentTransitionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from    AssignmentStatus
		to      AssignmentStatus
		allowed bool
	}{
		{AssignmentStatusPending, AssignmentStatusSent, true},
		{AssignmentStatusPending, AssignmentStatusOpened, true},
		{AssignmentStatusPending, AssignmentStatusCompleted, true},
		{AssignmentStatusSent, AssignmentStatusOpened, true},
		{AssignmentStatusSent, AssignmentStatusCompleted, true},
		{AssignmentStatusSent, AssignmentStatusPending, false},
		{AssignmentStatusOpened, AssignmentStatusCompleted, true},
		{AssignmentStatusOpened, AssignmentStatusSent, false},
		{AssignmentStatusCompleted, AssignmentStatusOpened, false},
		{AssignmentStatusCompleted, AssignmentStatusSent, false},
		{AssignmentStatusCompleted, AssignmentStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assignment := newPendingAssignment(t)
			assignment.Status = tt.from
			assert.Equal(t, tt.allowed, assignment.CanTransition(tt.to))
		})
	}
}

// Expiry is evaluated live against the clock, never stored as a
// status, so it applies regardless of how far the lifecycle got.
func TestAssignmentExpiry(t *testing.T) {
	t.Parallel()

	assignment := newPendingAssignment(t)

	assert.False(t, assignment.Expired(assignment.TokenExpiresAt.Add(-time.Minute)))
	assert.True(t, assignment.Expired(assignment.TokenExpiresAt.Add(time.Second)))

	// Still expired after delivery and open.
	assignment.Status = AssignmentStatusOpened
	assert.True(t, assignment.Expired(assignment.TokenExpiresAt.Add(time.Second)))
}

func TestCompletedAssignmentNeverExpires(t *testing.T) {
	t.Parallel()

	assignment := newPendingAssignment(t)
	now := time.Now().UTC()
	require.NoError(t, assignment.MarkCompleted(now, uuid.New()))

	assert.False(t, assignment.Expired(assignment.TokenExpiresAt.Add(365*24*time.Hour)))
}

func TestAssignmentLifecycleStamping(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	assignment := newPendingAssignment(t)

	require.NoError(t, assignment.MarkSent(now))
	require.NotNil(t, assignment.SentAt)
	assert.Equal(t, now, *assignment.SentAt)

	opened := now.Add(2 * time.Hour)
	require.NoError(t, assignment.MarkOpened(opened))
	require.NotNil(t, assignment.OpenedAt)

	submissionID := uuid.New()
	completed := opened.Add(10 * time.Minute)
	require.NoError(t, assignment.MarkCompleted(completed, submissionID))
	require.NotNil(t, assignment.SubmissionID)
	assert.Equal(t, submissionID, *assignment.SubmissionID)

	// Completed is terminal.
	assert.ErrorIs(t, assignment.MarkSent(completed), ErrAssignmentTransition)
	assert.ErrorIs(t, assignment.MarkOpened(completed), ErrAssignmentTransition)
}

func TestRecordReminderKeepsStatus(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	assignment := newPendingAssignment(t)
	require.NoError(t, assignment.MarkSent(now))

	assignment.RecordReminder(now.Add(24 * time.Hour))
	assignment.RecordReminder(now.Add(48 * time.Hour))

	assert.Equal(t, 2, assignment.ReminderCount)
	assert.Equal(t, AssignmentStatusSent, assignment.Status)
	require.NotNil(t, assignment.LastReminderAt)
}

func TestFormSubmissionValidation(t *testing.T) {
	t.Parallel()

	_, err := NewFormSubmission(uuid.New(), uuid.New(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrEmptySubmissionAnswers)

	_, err = NewFormSubmission(uuid.New(), uuid.New(), uuid.New(), []byte(`{"q1":`))
	assert.ErrorIs(t, err, ErrInvalidSubmissionJSON)

	submission, err := NewFormSubmission(uuid.New(), uuid.New(), uuid.New(), []byte(`{"q1":"fine"}`))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, submission.ID)
	assert.False(t, submission.SubmittedAt.IsZero())
}
