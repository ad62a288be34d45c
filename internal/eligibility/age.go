package eligibility

import "time"

// AgeAt returns the number of full calendar years between birth and now. The
// birthday is reached once now's month and day are not before birth's, so a
// Feb 29 birthday completes a year on Mar 1 in non-leap years.
func AgeAt(birth, now time.Time) int {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()

	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age
}
