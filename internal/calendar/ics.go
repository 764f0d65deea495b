package calendar

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-ical"
)

const icsLine = 75

// Calendar builds the single-event VCALENDAR shared by the CalDAV adapter and the ICS download.
func Calendar(ev Event, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//PlombiCRM//FR")
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	tz := ical.NewProp("X-WR-TIMEZONE")
	tz.Value = "Europe/Paris"
	cal.Props.Set(tz)

	vev := ical.NewEvent()
	vev.Props.SetText(ical.PropUID, ev.UID())
	vev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	vev.Props.SetDateTime(ical.PropDateTimeStart, ev.Start.In(Paris))
	vev.Props.SetDateTime(ical.PropDateTimeEnd, ev.End.In(Paris))
	vev.Props.SetText(ical.PropSummary, ev.Title)
	vev.Props.SetText(ical.PropStatus, "CONFIRMED")
	vev.Props.SetText(ical.PropTransparency, "OPAQUE")
	vev.Props.SetText(ical.PropDescription, ev.Description)
	vev.Props.SetText(ical.PropLocation, ev.Location)
	cal.Children = append(cal.Children, vev.Component)
	return cal
}

// BuildICS encodes the event calendar with CRLF line endings, folding lines at 75 octets.
func BuildICS(ev Event, stamp time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(Calendar(ev, stamp)); err != nil {
		return nil, fmt.Errorf("calendar: encode ics: %w", err)
	}
	var b strings.Builder
	for _, l := range strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n") {
		fold(&b, l)
	}
	return []byte(b.String()), nil
}

// ICSFilename is the download name of a job's calendar file.
func ICSFilename(projectID uint) string {
	return "chantier-" + strconv.FormatUint(uint64(projectID), 10) + ".ics"
}

// fold splits content lines longer than 75 octets without cutting a rune.
func fold(b *strings.Builder, line string) {
	limit := icsLine
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = icsLine - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}
