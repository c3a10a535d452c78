package ticket

import (
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/id"
	"github.com/orris-inc/ticketdesk/internal/shared/utils"
)

func parseTicketID(c *gin.Context) (string, error) {
	return utils.ParseSIDParam(c, "id", id.PrefixTicket, "ticket")
}

func parseEntryPath(c *gin.Context) (string, string, error) {
	ticketID, err := parseTicketID(c)
	if err != nil {
		return "", "", err
	}
	entryID, err := utils.ParseSIDParam(c, "entryId", id.PrefixEntry, "entry")
	if err != nil {
		return "", "", err
	}
	return ticketID, entryID, nil
}

// limitBody caps the request body so oversized uploads fail while parsing.
func limitBody(c *gin.Context, maxBytes int64) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
}

// multipartError classifies a failure to read a multipart body.
func multipartError(err error, maxBytes int64) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.NewValidationError("upload exceeds maximum size",
			"field=file", "max_bytes="+strconv.FormatInt(maxBytes, 10))
	}
	if stderrors.Is(err, http.ErrNotMultipart) || stderrors.Is(err, http.ErrMissingBoundary) {
		return errors.NewValidationError("request must be multipart/form-data")
	}
	return errors.NewValidationError("invalid multipart body", err.Error())
}

// openedFiles keeps the multipart parts open until the use case has read them.
type openedFiles []multipart.File

func (o openedFiles) Close() {
	for _, f := range o {
		_ = f.Close()
	}
}

func openUploads(headers []*multipart.FileHeader) ([]usecases.UploadFile, openedFiles, error) {
	files := make([]usecases.UploadFile, 0, len(headers))
	opened := make(openedFiles, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			opened.Close()
			return nil, nil, errors.NewValidationError("failed to read uploaded file", "original_name="+fh.Filename)
		}
		opened = append(opened, f)
		files = append(files, usecases.UploadFile{
			OriginalName: fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			Content:      f,
		})
	}
	return files, opened, nil
}

// formValues returns every value posted under any of the given names, so
// clients may send either "name" or "name[]".
func formValues(form *multipart.Form, names ...string) []string {
	var out []string
	for _, n := range names {
		out = append(out, form.Value[n]...)
	}
	return out
}

func formFiles(form *multipart.Form, names ...string) []*multipart.FileHeader {
	var out []*multipart.FileHeader
	for _, n := range names {
		out = append(out, form.File[n]...)
	}
	return out
}
