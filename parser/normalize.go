package parser

import (
	"strings"

	"github.com/stephane-martin/mailsink/models"
)

// NoneValue is the textual placeholder stored when a routing field is
// absent everywhere. Body fields never use it: an absent body is an
// explicit null.
const NoneValue = "None"

// Field is an optional text value. It distinguishes "present, possibly
// empty later pipeline stages care" from "absent" so the
// default-vs-null decision is taken once, here, and the storage layer
// never sees an unbound value.
type Field struct {
	Value   string
	Defined bool
}

func Present(v string) Field {
	return Field{Value: v, Defined: true}
}

// OrDefault resolves an absent field to the "None" placeholder.
func (f Field) OrDefault() string {
	if f.Defined {
		return f.Value
	}
	return NoneValue
}

// OrNull resolves an absent field to a SQL null.
func (f Field) OrNull() *string {
	if f.Defined {
		v := f.Value
		return &v
	}
	return nil
}

func firstDefined(fields ...Field) Field {
	for _, f := range fields {
		if f.Defined {
			return f
		}
	}
	return Field{}
}

// hintField picks the first non-empty value of a multi-valued
// transport hint, in iteration order.
func hintField(values ...string) Field {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if len(v) > 0 {
			return Present(v)
		}
	}
	return Field{}
}

// Normalize flattens a parsed message and its transport envelope into
// a storable row. The envelope wins over parsed headers: headers can be
// spoofed or absent, the envelope is what actually routed the message.
func Normalize(parsed *ParsedMail, envelope models.BaseInfos) models.Email {
	var headerTo Field
	if len(parsed.To) > 0 {
		headerTo = Present(parsed.To[0])
	}
	return models.Email{
		Subject: parsed.Subject.OrDefault(),
		From:    firstDefined(hintField(envelope.MailFrom), parsed.From).OrDefault(),
		To:      firstDefined(hintField(envelope.RcptTo...), headerTo).OrDefault(),
		HTML:    parsed.HTML.OrNull(),
		Text:    parsed.Text.OrNull(),
	}
}
