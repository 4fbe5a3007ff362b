// Package ics renders calendar snapshots as iCalendar documents.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/hylla/lanecal/internal/app"
)

// ProductID identifies lanecal in exported calendars.
const ProductID = "-//hylla//lanecal//EN"

// Export writes snap as a VCALENDAR with one all-day VEVENT per event. DTEND is exclusive
// in iCalendar, so it is the day after the inclusive end date. The resource name is carried
// in CATEGORIES and the color token in COLOR.
func Export(w io.Writer, snap app.Snapshot, stamp time.Time) error {
	if w == nil {
		return errors.New("ics writer is required")
	}
	names := make(map[string]string, len(snap.Resources))
	for _, r := range snap.Resources {
		names[r.ID] = r.Name
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	for _, ev := range snap.Events {
		vevent := cal.AddEvent(uid(ev.ID))
		vevent.SetDtStampTime(stamp.UTC())
		vevent.SetSummary(ev.Title)
		vevent.SetAllDayStartAt(ev.StartDate.Time())
		vevent.SetAllDayEndAt(ev.EndDate.AddDays(1).Time())
		if name, ok := names[ev.ResourceID]; ok {
			vevent.SetProperty(ical.ComponentPropertyCategories, name)
		}
		if color := strings.TrimSpace(ev.Color); color != "" {
			vevent.SetProperty(ical.ComponentProperty("COLOR"), color)
		}
	}
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

func uid(eventID string) string {
	return eventID + "@lanecal"
}
