package parser

import (
	"io"

	"github.com/h2non/filetype"

	"github.com/stephane-martin/mailsink/models"
)

// AnalyseAttachment reads one attachment part and returns its metadata:
// filename, disposition, the declared content type and the type sniffed
// from the actual bytes. The content itself is discarded.
func AnalyseAttachment(filename, contentType, disposition string, r io.Reader) (*models.Attachment, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	attachment := &models.Attachment{
		Name:         filename,
		Disposition:  disposition,
		ReportedType: contentType,
		Size:         int64(len(content)),
	}
	typ, err := filetype.Match(content)
	if err == nil && typ != filetype.Unknown {
		attachment.InferredType = typ.MIME.Value
	}
	return attachment, nil
}
