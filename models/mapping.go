// models/mapping.go
package models

// SubjectSchool is one row of the subject-to-school mapping CSV.
// CSV headers must match the tags exactly: "subject,school".
type SubjectSchool struct {
	Subject string `csv:"subject"` // catalog path segment, e.g. "comp_sci"
	School  string `csv:"school"`
}
