package services

// Subject 科目 (教室)
const (
	SubjectTheory = "學科"
	SubjectMakeup = "彩妝"
	SubjectStyle  = "造型"
	SubjectSkin   = "護膚"
	SubjectIntern = "實習"
)

// Location 分校
const (
	LocationTaipei   = "台北"
	LocationTaoyuan  = "桃園"
	LocationTaichung = "台中"
)

// DefaultLocation is the fallback when an unknown location is supplied.
const DefaultLocation = LocationTaipei

// subjectCatalog maps each location to its ordered subject list. Order is
// display order only; addressing always uses the subject value itself. The
// same subject may sit at different positions per location.
var subjectCatalog = map[string][]string{
	LocationTaipei:   {SubjectTheory, SubjectMakeup, SubjectStyle, SubjectSkin, SubjectIntern},
	LocationTaoyuan:  {SubjectMakeup, SubjectSkin, SubjectTheory, SubjectStyle},
	LocationTaichung: {SubjectTheory, SubjectStyle, SubjectMakeup, SubjectIntern},
}

// subjectOffsets holds each subject's column offset relative to the time
// column in the legacy sheet layout (row 2 of the period sheet).
var subjectOffsets = map[string]int{
	SubjectTheory: 1,
	SubjectMakeup: 2,
	SubjectStyle:  3,
	SubjectSkin:   4,
	SubjectIntern: 5,
}

// SubjectsFor returns the ordered subjects offered at a location. An unknown
// location degrades to the default location's list so the UI always renders.
func SubjectsFor(location string) []string {
	subjects, ok := subjectCatalog[location]
	if !ok {
		subjects = subjectCatalog[DefaultLocation]
	}
	out := make([]string, len(subjects))
	copy(out, subjects)
	return out
}

// OffsetFor returns the legacy sheet column offset for a subject, or 0 for
// an unknown subject.
func OffsetFor(subject string) int {
	return subjectOffsets[subject]
}

// IsValidSubject reports whether the subject is one of the known classrooms.
func IsValidSubject(subject string) bool {
	_, ok := subjectOffsets[subject]
	return ok
}

// IsValidLocation reports whether the location is a known branch.
func IsValidLocation(location string) bool {
	_, ok := subjectCatalog[location]
	return ok
}

// Locations returns all known branch locations in display order.
func Locations() []string {
	return []string{LocationTaipei, LocationTaoyuan, LocationTaichung}
}

// NormalizeLocation maps unknown locations onto the default branch.
func NormalizeLocation(location string) string {
	if IsValidLocation(location) {
		return location
	}
	return DefaultLocation
}
