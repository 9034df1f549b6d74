package calendarsync

import (
	"fmt"
	"strings"
	"time"

	"github.com/Leganyst/lesson-booking/internal/calendar"
	"github.com/Leganyst/lesson-booking/internal/model"
)

// Event: то, что пишется в календарь инструктора.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// EventForBooking собирает событие в часовом поясе календаря.
func EventForBooking(b *model.Booking, conn model.CalendarConnection) Event {
	loc := time.UTC
	if conn.TimeZone != "" {
		if l, err := time.LoadLocation(conn.TimeZone); err == nil {
			loc = l
		}
	}

	who := b.CustomerName
	if who == "" {
		who = "guest"
	}

	lines := []string{
		calendar.FormatSlotForUser(
			calendar.TimeRange{Start: b.StartTime, End: b.EndTime},
			loc,
			true,
			b.ID.String(),
		),
	}
	if b.PartySize != nil {
		lines = append(lines, fmt.Sprintf("Party size: %d", *b.PartySize))
	}
	if b.SkillLevel != nil && *b.SkillLevel != "" {
		lines = append(lines, "Skill level: "+*b.SkillLevel)
	}
	if b.Notes != "" {
		lines = append(lines, b.Notes)
	}

	return Event{
		Summary:     "Ski lesson: " + who,
		Description: strings.Join(lines, "\n"),
		Start:       b.StartTime.In(loc),
		End:         b.EndTime.In(loc),
		TimeZone:    loc.String(),
	}
}
