package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/naratama/library-service/library/internal/model"
)

// The slot lookup and the exclusion constraint share the half-open test, so
// a booking ending at 11:00 never collides with one starting at 11:00.
func TestRoomSlotsQuery(t *testing.T) {
	t.Parallel()
	roomID := uuid.MustParse("3f2a1b0c-9d8e-4f7a-8b6c-5d4e3f2a1b0c")
	from := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)

	query, args, err := roomSlotsQuery(roomID, from, to).ToSql()
	require.NoError(t, err)
	require.Equal(t,
		"SELECT id, start_time, end_time, status FROM room_bookings "+
			"WHERE room_id = $1 AND status IN ($2,$3) AND end_time > $4 AND start_time < $5 "+
			"ORDER BY start_time",
		query)
	require.Equal(t, []any{
		roomID.String(), model.BookingPending, model.BookingConfirmed, from, to,
	}, args)
}
