package notification

import (
	"fmt"
	"strings"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// MESSAGE TEMPLATES
// ═══════════════════════════════════════════════════════════════════════════

// ScheduleChangeMessage renders the title and body for one schedule change.
// Wording is per kind so a cancellation reads as a cancellation, not as a
// generic "schedule updated".
func ScheduleChangeMessage(occ schedule.Occurrence) (title, message string) {
	date := ""
	if occ.Recurrence.Type == schedule.SingleDate {
		date = timeutil.FormatDate(occ.Recurrence.Date)
	}
	span := occ.Periods.String()

	switch occ.Kind {
	case schedule.KindCancel:
		title = "Class cancelled"
		message = fmt.Sprintf("%s on %s (periods %s) has been cancelled.", subjectOr(occ.Subject, "A class"), date, span)
	case schedule.KindMakeup:
		title = "Makeup class scheduled"
		message = fmt.Sprintf("%s makeup class on %s, periods %s.", subjectOr(occ.Subject, "A"), date, span)
	case schedule.KindHoliday:
		title = "School holiday"
		message = fmt.Sprintf("No classes on %s.", date)
	case schedule.KindSpecial:
		title = "Special lecture"
		message = fmt.Sprintf("Special lecture %s, periods %s.", subjectOr(occ.Subject, "scheduled"), span)
	case schedule.KindEvent:
		title = "School event"
		message = fmt.Sprintf("%s on %s (periods %s).", subjectOr(occ.Subject, "Event"), date, span)
	default:
		title = "Schedule updated"
		message = fmt.Sprintf("The timetable for %s was updated.", subjectOr(occ.Subject, "your class"))
	}
	return title, message
}

// WeeklyDigestMessage renders the Sunday-evening summary of the coming
// week. Suppressed entries are listed with their status so students see
// what was cancelled, not just what remains.
func WeeklyDigestMessage(result schedule.Result) (title, message string) {
	title = fmt.Sprintf("Your week of %s", timeutil.FormatDate(result.WeekStart))

	if len(result.Entries) == 0 {
		return title, "No classes scheduled this week."
	}

	var b strings.Builder
	currentDate := ""
	for _, e := range result.Entries {
		date := timeutil.FormatDate(e.Date)
		if date != currentDate {
			if currentDate != "" {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s (%s):\n", date, e.Date.Weekday().String()[:3])
			currentDate = date
		}
		b.WriteString("  " + digestLine(e) + "\n")
	}

	return title, strings.TrimRight(b.String(), "\n")
}

// NoticeMessage renders a published notice for delivery. The body is
// truncated so a long notice does not flood the channel; the portal shows
// the full text.
func NoticeMessage(noticeTitle, body string) (title, message string) {
	title = "Notice: " + noticeTitle
	message = truncate(strings.TrimSpace(body), 300)
	if message == "" {
		message = noticeTitle
	}
	return title, message
}

func digestLine(e schedule.Entry) string {
	occ := e.Occurrence
	switch {
	case occ.Kind == schedule.KindHoliday:
		return "Holiday - no classes"
	case e.SuppressedByCancel:
		return fmt.Sprintf("%s (periods %s) - CANCELLED", subjectOr(occ.Subject, "Class"), occ.Periods)
	case occ.Kind == schedule.KindCancel:
		return fmt.Sprintf("Cancellation: %s (periods %s)", subjectOr(occ.Subject, "class"), occ.Periods)
	case occ.Kind == schedule.KindMakeup:
		return fmt.Sprintf("%s (periods %s) - makeup", subjectOr(occ.Subject, "Class"), occ.Periods)
	case occ.Kind == schedule.KindSpecial:
		return fmt.Sprintf("%s (periods %s) - special lecture", subjectOr(occ.Subject, "Class"), occ.Periods)
	default:
		line := fmt.Sprintf("%s (periods %s)", subjectOr(occ.Subject, "Class"), occ.Periods)
		if e.SuppressedByHoliday {
			line += " - falls on a holiday"
		}
		return line
	}
}

func subjectOr(subject, fallback string) string {
	if s := strings.TrimSpace(subject); s != "" {
		return s
	}
	return fallback
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
