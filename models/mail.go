package models

import (
	"time"
)

// BaseInfos carries the transport-level envelope of an inbound message.
// MailFrom and RcptTo come from the SMTP dialog (or from query
// parameters on the HTTP ingestion path) and are authoritative over
// whatever the message headers claim.
type BaseInfos struct {
	MailFrom     string    `json:"mail_from,omitempty"`
	RcptTo       []string  `json:"rcpt_to,omitempty"`
	Addr         string    `json:"addr,omitempty"`
	Helo         string    `json:"helo,omitempty"`
	Family       string    `json:"family,omitempty"`
	TimeReported time.Time `json:"timereported,omitempty"`
	UID          [16]byte  `json:"-"`
}

type IncomingMail struct {
	BaseInfos
	Data []byte `json:"data,omitempty"`
}

// Email is one persisted message row. HTML and Text are pointers so
// that an absent body binds and marshals as an explicit null, never as
// an empty-string placeholder.
type Email struct {
	ID         int64     `db:"id" json:"id"`
	Subject    string    `db:"subject" json:"subject"`
	From       string    `db:"from" json:"from"`
	To         string    `db:"to" json:"to"`
	HTML       *string   `db:"html" json:"html"`
	Text       *string   `db:"text" json:"text"`
	CreatedAt  time.Time `db:"createdAt" json:"createdAt"`
	ParsedCode *string   `db:"-" json:"parsed_code,omitempty"`
}

// Attachment is the metadata observed for one message part carrying a
// file. The ingestion pipeline logs these; it does not persist them.
type Attachment struct {
	Name         string `json:"name,omitempty"`
	Disposition  string `json:"disposition,omitempty"`
	ReportedType string `json:"reported_type,omitempty"`
	InferredType string `json:"inferred_type,omitempty"`
	Size         int64  `json:"size"`
}
