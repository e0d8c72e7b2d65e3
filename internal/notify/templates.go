package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/wolfman30/careflow-portal/internal/apperr"
)

// Kind names a notification template.
type Kind string

const (
	KindAppointmentReminder Kind = "appointment_reminder"
	KindMedicationAlert     Kind = "medication_alert"
	KindRefillReminder      Kind = "refill_reminder"
)

// Valid reports whether k is one of the known templates.
func (k Kind) Valid() bool {
	switch k {
	case KindAppointmentReminder, KindMedicationAlert, KindRefillReminder:
		return true
	}
	return false
}

// Field is a template value that may arrive as a JSON string or number.
type Field string

func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("notify: field must be a string or number: %w", err)
	}
	*f = Field(n.String())
	return nil
}

// Data carries the kind-specific values substituted into a template.
type Data struct {
	AppointmentDate Field `json:"appointment_date,omitempty"`
	AppointmentTime Field `json:"appointment_time,omitempty"`
	DoctorName      Field `json:"doctor_name,omitempty"`
	MedicationName  Field `json:"medication_name,omitempty"`
	Dosage          Field `json:"dosage,omitempty"`
	PillsRemaining  Field `json:"pills_remaining,omitempty"`
	RefillDate      Field `json:"refill_date,omitempty"`
}

const bodyTemplates = `
{{define "appointment_reminder"}}<h1>Appointment Reminder</h1>
<p>Dear {{.Name}},</p>
<p>This is a reminder about your upcoming appointment:</p>
<ul>
  <li><strong>Doctor:</strong> {{.Data.DoctorName}}</li>
  <li><strong>Date:</strong> {{.Data.AppointmentDate}}</li>
  <li><strong>Time:</strong> {{.Data.AppointmentTime}}</li>
</ul>
<p>Please arrive 15 minutes early to complete any necessary paperwork.</p>
<p>If you need to reschedule, please contact us as soon as possible.</p>
{{template "signature"}}{{end}}

{{define "medication_alert"}}<h1>Medication Reminder</h1>
<p>Dear {{.Name}},</p>
<p>This is a reminder to take your medication:</p>
<ul>
  <li><strong>Medication:</strong> {{.Data.MedicationName}}</li>
  <li><strong>Dosage:</strong> {{.Data.Dosage}}</li>
</ul>
<p>Remember to take your medication as prescribed by your doctor.</p>
{{template "signature"}}{{end}}

{{define "refill_reminder"}}<h1>Prescription Refill Reminder</h1>
<p>Dear {{.Name}},</p>
<p>Your prescription is running low:</p>
<ul>
  <li><strong>Medication:</strong> {{.Data.MedicationName}}</li>
  <li><strong>Pills Remaining:</strong> {{.Data.PillsRemaining}}</li>
{{- if .Data.RefillDate}}
  <li><strong>Refill Date:</strong> {{.Data.RefillDate}}</li>
{{- end}}
</ul>
<p>Please request a refill or contact your doctor to renew your prescription.</p>
{{template "signature"}}{{end}}

{{define "signature"}}<br>
<p>Best regards,<br>Your Healthcare Team</p>
{{end}}`

var templates = template.Must(template.New("notify").Parse(bodyTemplates))

// Render produces the subject and HTML body for kind. An empty recipientName
// greets the reader as "Patient".
func Render(kind Kind, recipientName string, data Data) (subject, html string, err error) {
	switch kind {
	case KindAppointmentReminder:
		subject = "Appointment Reminder - " + string(data.DoctorName)
	case KindMedicationAlert:
		subject = "Medication Reminder - " + string(data.MedicationName)
	case KindRefillReminder:
		subject = "Refill Reminder - " + string(data.MedicationName)
	default:
		return "", "", apperr.NewInvalidRequest("Invalid notification type")
	}

	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "Patient"
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(kind), struct {
		Name string
		Data Data
	}{Name: name, Data: data}); err != nil {
		return "", "", apperr.NewInternal(fmt.Errorf("notify: render %s: %w", kind, err))
	}
	return subject, buf.String(), nil
}
