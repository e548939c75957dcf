package email

import "time"

// ContactEmailData is the payload of the email:contact task.
type ContactEmailData struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IPAddress string    `json:"ip_address"`
	SentAt    time.Time `json:"sent_at"`
}

type EmailRequest struct {
	To      []string // Recipients
	ReplyTo string   // optional
	Subject string
	Body    string // plain text
}
