package domain

type PatientID string

type Patient struct {
	ID                  PatientID
	FullName            string
	MedicalRecordNumber string
	DateOfBirth         string
}

// Label is the one-line identification shown in pickers and audit text.
func (p Patient) Label() string {
	if p.MedicalRecordNumber == "" {
		return p.FullName
	}
	return p.FullName + " (" + p.MedicalRecordNumber + ")"
}
