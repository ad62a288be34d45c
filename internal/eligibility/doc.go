// Package eligibility decides which card products an applicant may be offered.
//
// A Chain holds Rules ordered from most to least specific. The first Rule whose
// Applies reports true supplies the offers and evaluation stops; the Default
// rule sits last and applies to everyone. All thresholds live in an immutable
// Policy injected at construction. Nothing in this package performs I/O.
package eligibility
