package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"toolshelf/internal/ingest"
)

const adminSecretHeader = "X-Admin-Secret"

func (s *Server) handleUploadTools(c *gin.Context) {
	secret := c.GetHeader(adminSecretHeader)
	if err := s.ingester.Authorize(secret); err != nil {
		s.writeIngestError(c, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusBadRequest, ingest.KindBadRequest.String(),
				fmt.Sprintf("File exceeds the %d byte upload limit", tooLarge.Limit))
			return
		}
		writeError(c, http.StatusBadRequest, ingest.KindBadRequest.String(), ingest.ErrInvalidBody.Error())
		return
	}

	report, err := s.ingester.Ingest(c.Request.Context(), ingest.Upload{
		Secret:      secret,
		ContentType: c.GetHeader("Content-Type"),
		Body:        body,
		Base64:      strings.EqualFold(strings.TrimSpace(c.GetHeader("Content-Transfer-Encoding")), "base64"),
	})
	if err != nil {
		s.writeIngestError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) writeIngestError(c *gin.Context, err error) {
	ierr := ingest.AsError(err)
	c.JSON(ierr.StatusCode(), ierr.Body())
}
