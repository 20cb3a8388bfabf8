package service

import (
	"time"

	calModel "shopfloor_backend/internals/features/calendar/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

type Outcome int

const (
	OutcomeUnchanged Outcome = iota // session was no longer ACTIVE
	OutcomeCompleted
	OutcomeIgnored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeIgnored:
		return "ignored"
	default:
		return "unchanged"
	}
}

// TeamLoginTime snaps logins up to grace minutes after shift start onto shift start.
func TeamLoginTime(shift *calModel.ShiftEntryModel, graceMinutes int, now dbtime.Tod) dbtime.Tod {
	if graceMinutes < 0 {
		graceMinutes = 0
	}
	if !now.After(shift.ShiftEntryStart.AddMinutes(graceMinutes).Time) {
		return shift.ShiftEntryStart
	}
	return now
}

// ClosingTime is the local wall time a close uses. Sessions from an earlier date are
// closed at end of day so they clamp to that day's shift end.
func ClosingTime(s *sessModel.OperatorSessionModel, now dbtime.Moment) dbtime.Tod {
	if dbtime.DateOf(s.OperatorSessionLoginTeamDate).Before(now.Date) {
		return dbtime.EndOfDay
	}
	return now.Time
}

// Close applies the close algorithm to an ACTIVE session.
// shift may be nil, in which case the session completes at the current local date and time.
// loc converts login_actual to local wall time.
func Close(s *sessModel.OperatorSessionModel, shift *calModel.ShiftEntryModel, now dbtime.Moment, closing dbtime.Tod, loc *time.Location) Outcome {
	if !s.IsActive() {
		return OutcomeUnchanged
	}
	actual := now.UTC
	s.OperatorSessionLogoffActual = &actual

	if shift == nil {
		date, tod := now.Date, now.Time
		s.OperatorSessionStatus = sessModel.StatusCompleted
		s.OperatorSessionLogoffTeamDate = &date
		s.OperatorSessionLogoffTeamTime = &tod
		return OutcomeCompleted
	}

	if loc == nil {
		loc = time.UTC
	}
	date := dbtime.DateOf(shift.ShiftEntryDate)
	s.OperatorSessionLogoffTeamDate = &date

	loginLocal := dbtime.From(s.OperatorSessionLoginActual.In(loc))
	start, end := shift.ShiftEntryStart, shift.ShiftEntryEnd
	if loginLocal.Before(start.Time) && closing.Before(start.Time) {
		s.OperatorSessionStatus = sessModel.StatusIgnore
		s.OperatorSessionLogoffTeamTime = &start
		return OutcomeIgnored
	}

	logoff := dbtime.MinTod(closing, end)
	if logoff.Before(start.Time) {
		logoff = start
	}
	s.OperatorSessionStatus = sessModel.StatusCompleted
	s.OperatorSessionLogoffTeamTime = &logoff
	return OutcomeCompleted
}

// QualifiesForAutoBreak reports whether a completed session covered the whole nominal shift.
// Times are compared at minute precision.
func QualifiesForAutoBreak(s *sessModel.OperatorSessionModel, shift *calModel.ShiftEntryModel) (bool, string) {
	if s.OperatorSessionLogoffTeamTime == nil {
		return false, ReasonMissingLogoff
	}
	if !s.OperatorSessionLoginTeamTime.SameMinute(shift.ShiftEntryStart) {
		return false, ReasonLoginNotAtStart
	}
	if !s.OperatorSessionLogoffTeamTime.SameMinute(shift.ShiftEntryEnd) {
		return false, ReasonLogoffNotAtEnd
	}
	return true, ""
}

type ShiftState string

const (
	ShiftStateActive   ShiftState = "active"
	ShiftStateInactive ShiftState = "inactive"
	ShiftStateNoShift  ShiftState = "no_shift"
)

// CurrentShiftState classifies today's shift for the team dashboard.
func CurrentShiftState(shift *calModel.ShiftEntryModel, now dbtime.Moment) ShiftState {
	if shift == nil {
		return ShiftStateNoShift
	}
	if shift.Contains(now.Time) {
		return ShiftStateActive
	}
	return ShiftStateInactive
}
