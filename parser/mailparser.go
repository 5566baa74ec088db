package parser

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/russross/blackfriday/v2"

	"github.com/stephane-martin/mailsink/metrics"
	"github.com/stephane-martin/mailsink/models"
)

// ParsedMail is the structured view of one raw message, before
// normalization. Optional header-derived values are carried as Fields
// so that the normalizer decides between default and null exactly once.
type ParsedMail struct {
	Subject     Field
	From        Field
	To          []string
	HTML        Field
	Text        Field
	ContentType string
	Size        int64
	Attachments []*models.Attachment
}

type Parser struct {
	Logger log15.Logger
}

func NewParser(logger log15.Logger) *Parser {
	return &Parser{Logger: logger}
}

// Parse decodes the raw bytes of an incoming message. A returned error
// means the message could not be read as MIME at all; the caller
// decides what survives such a failure.
func (p *Parser) Parse(i *models.IncomingMail) (*ParsedMail, error) {
	metrics.M().MessageSize.Observe(float64(len(i.Data)))

	m, err := mail.ReadMessage(bytes.NewReader(i.Data))
	if err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	parsed := &ParsedMail{Size: int64(len(i.Data))}

	rawSubject := strings.TrimSpace(m.Header.Get("Subject"))
	if len(rawSubject) > 0 {
		subject, err := StringDecode(rawSubject)
		if err != nil {
			p.Logger.Debug("Error decoding subject header", "error", err)
			subject = rawSubject
		}
		parsed.Subject = Present(strings.TrimSpace(subject))
	}

	rawFrom := strings.TrimSpace(m.Header.Get("From"))
	if len(rawFrom) > 0 {
		addr, err := mail.ParseAddress(rawFrom)
		if err == nil {
			parsed.From = Present(addr.Address)
		} else {
			p.Logger.Debug("Error parsing the From header", "error", err)
			parsed.From = Present(rawFrom)
		}
	}

	rawTo := strings.TrimSpace(m.Header.Get("To"))
	if len(rawTo) > 0 {
		addrs, err := mail.ParseAddressList(rawTo)
		if err == nil {
			for _, a := range addrs {
				parsed.To = append(parsed.To, a.Address)
			}
		} else {
			p.Logger.Debug("Error parsing the To header", "error", err)
		}
	}

	contentType, plain, htmls, attachments := ParsePart(bytes.NewReader(i.Data), p.Logger)
	parsed.ContentType = contentType
	parsed.Attachments = attachments

	plain = strings.TrimSpace(plain)
	if len(plain) > 0 {
		parsed.Text = Present(plain)
	}
	html := strings.TrimSpace(strings.Join(htmls, "\n"))
	if len(html) > 0 {
		parsed.HTML = Present(html)
	}

	return parsed, nil
}

// ParsePart walks one MIME part (possibly the whole message),
// collecting the plain text, the HTML bodies and the attachment
// metadata of the subtree. Markdown parts are rendered to HTML the
// same way the text/markdown content types are usually meant.
func ParsePart(part io.Reader, logger log15.Logger) (string, string, []string, []*models.Attachment) {
	plain := ""
	var allHTML []string
	var attachments []*models.Attachment

	msg, err := mail.ReadMessage(part)
	if err != nil {
		logger.Info("ReadMessage", "error", err)
		return "", "", nil, nil
	}
	ctHeader := strings.TrimSpace(msg.Header.Get("Content-Type"))
	if len(ctHeader) == 0 {
		ctHeader = "text/plain; charset=UTF-8"
	}
	contentType, params, err := mime.ParseMediaType(ctHeader)
	if err != nil {
		logger.Info("Content-Type parsing error", "error", err)
		return "", "", nil, nil
	}
	charSet := strings.TrimSpace(params["charset"])
	transferEncoding := strings.ToLower(strings.TrimSpace(msg.Header.Get("Content-Transfer-Encoding")))

	if contentType == "text/plain" {
		return contentType, decodeBody(msg.Body, charSet, transferEncoding), nil, nil
	}
	if contentType == "text/html" {
		return contentType, "", []string{decodeBody(msg.Body, charSet, transferEncoding)}, nil
	}
	if isMarkdown(contentType) {
		html := blackfriday.Run([]byte(decodeBody(msg.Body, charSet, transferEncoding)))
		return contentType, "", []string{string(html)}, nil
	}
	if !strings.HasPrefix(contentType, "multipart/") {
		return contentType, "", nil, nil
	}
	boundary := strings.TrimSpace(params["boundary"])
	if len(boundary) == 0 {
		return contentType, "", nil, nil
	}
	mr := multipart.NewReader(msg.Body, boundary)
	for {
		subPart, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Info("NextPart", "error", err)
			if strings.Contains(err.Error(), "EOF") {
				break
			}
			continue
		}
		subContentTypeHeader := strings.TrimSpace(subPart.Header.Get("Content-Type"))
		subTransferHeader := strings.ToLower(strings.TrimSpace(subPart.Header.Get("Content-Transfer-Encoding")))

		if len(subContentTypeHeader) == 0 {
			subContentTypeHeader = "text/plain; charset=UTF-8"
		}

		subContentType, subParams, err := mime.ParseMediaType(subContentTypeHeader)
		if err != nil {
			logger.Info("NextPart Content-Type parsing", "error", err)
			continue
		}
		subCharset := strings.TrimSpace(subParams["charset"])

		if strings.HasPrefix(subContentType, "message/") {
			_, subPlain, subHTMLs, subAttachments := ParsePart(subPart, logger)
			plain = plain + subPlain + "\n"
			allHTML = append(allHTML, subHTMLs...)
			attachments = append(attachments, subAttachments...)
			continue
		}

		if strings.HasPrefix(subContentType, "multipart/") {
			h := fmt.Sprintf("Content-Type: %s\n", subContentTypeHeader)
			if subTransferHeader != "" {
				h += fmt.Sprintf("Content-Transfer-Encoding: %s\n", subTransferHeader)
			}
			h += "\n"

			_, subPlain, subHTMLs, subAttachments := ParsePart(
				io.MultiReader(strings.NewReader(h), subPart),
				logger,
			)
			plain = plain + subPlain + "\n"
			allHTML = append(allHTML, subHTMLs...)
			attachments = append(attachments, subAttachments...)
			continue
		}

		fn := strings.TrimSpace(subPart.FileName())
		if len(fn) == 0 {
			if subContentType == "text/plain" {
				plain = plain + decodeBody(subPart, subCharset, subTransferHeader) + "\n"
			}
			if subContentType == "text/html" {
				allHTML = append(allHTML, decodeBody(subPart, subCharset, subTransferHeader))
			}
			if isMarkdown(subContentType) {
				html := blackfriday.Run([]byte(decodeBody(subPart, subCharset, subTransferHeader)))
				allHTML = append(allHTML, string(html))
			}
			continue
		}
		filename, err := StringDecode(fn)
		if err != nil {
			continue
		}
		var subPartReader io.Reader = subPart
		if subTransferHeader == "base64" {
			subPartReader = base64.NewDecoder(base64.StdEncoding, subPartReader)
		}
		attachment, err := AnalyseAttachment(filename, subContentType, dispositionOf(subPart), subPartReader)
		if err != nil {
			logger.Info("Error analysing attachment", "filename", filename, "error", err)
			continue
		}
		attachments = append(attachments, attachment)
	}
	return contentType, plain, allHTML, attachments
}

func isMarkdown(contentType string) bool {
	return contentType == "text/markdown" || contentType == "text/x-markdown" || contentType == "text/x-gfm"
}

func dispositionOf(part *multipart.Part) string {
	d, _, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return d
}
