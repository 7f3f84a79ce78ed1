// Package descriptions builds playlist names and descriptions from extracted episodes.
package descriptions

import (
	"strings"
	"time"

	"github.com/desertthunder/spinsync/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DateLayout = "January 02, 2006"
	TimeLayout = "3:04pm"
)

// Clock returns the current time.
type Clock func() time.Time

var firstWord = cases.Title(language.Und, cases.NoLower)

// TitleAndDate returns "{title}: {date}".
//
// Without a title the date stands alone. now supplies the date when the episode has none;
// a nil clock reads the system time.
func TitleAndDate(ep models.Episode, now Clock) string {
	date := ep.Datetime
	if date.IsZero() {
		if now == nil {
			now = time.Now
		}
		date = now()
	}

	formatted := date.Format(DateLayout)
	title := strings.TrimSpace(ep.Title)
	if title == "" {
		return formatted
	}
	return title + ": " + formatted
}

// Description returns "At {venue}" for concerts.
// For radio episodes it composes "{Day} at {time} on {station} with {dj}",
// leaving out each phrase whose field is empty.
func Description(ep models.Episode) string {
	if venue := strings.TrimSpace(ep.Venue); venue != "" {
		return "At " + venue
	}

	var phrases []string
	if !ep.Datetime.IsZero() {
		day := ep.Datetime.Weekday().String()
		if ep.HasTime() {
			day += " at " + ep.Datetime.Format(TimeLayout)
		}
		phrases = append(phrases, day)
	}
	if station := strings.TrimSpace(ep.Station); station != "" {
		phrases = append(phrases, "on "+station)
	}
	if dj := strings.TrimSpace(ep.DJ); dj != "" {
		phrases = append(phrases, "with "+dj)
	}

	if len(phrases) == 0 {
		return ""
	}
	return capitalize(strings.Join(phrases, " "))
}

// capitalize upper-cases the first word and leaves the rest as composed.
func capitalize(s string) string {
	head, rest, found := strings.Cut(s, " ")
	head = firstWord.String(head)
	if !found {
		return head
	}
	return head + " " + rest
}
