package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"detailpro-backend/config"
	"detailpro-backend/services"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// importCompleteResponse is the non-streaming terminal object: the complete
// frame's discriminator plus the full batch counters.
type importCompleteResponse struct {
	Type string `json:"type"`
	*services.ImportSummary
}

// ImportCustomers accepts a multipart CSV/XLSX upload and runs the bulk
// import. Callers sending Accept: text/event-stream get progress streamed as
// it happens; everyone else gets a single JSON object equivalent to the
// terminal frame. Row failures are data, not transport failures, so the
// stream is always HTTP 200 once it starts; 4xx is reserved for no-file and
// unreadable-file conditions.
func ImportCustomers(c *gin.Context) {
	shopUUID, userUUID, ok := shopAndUserFromContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer f.Close()

	sheet, err := services.ReadSheet(fileHeader.Filename, f)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Unreadable file: "+err.Error())
		return
	}

	svc := services.NewImportService(services.NewGormCustomerStore(config.DB), shopRegion(shopUUID))

	if !strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		summary, err := svc.Run(c.Request.Context(), shopUUID, userUUID, sheet, services.NopFrameWriter{})
		if err != nil {
			if errors.Is(err, services.ErrMalformedFile) {
				c.JSON(http.StatusBadRequest, gin.H{"type": "error", "message": err.Error()})
				return
			}
			// Disconnected caller; nobody is listening for a response.
			return
		}
		c.JSON(http.StatusOK, importCompleteResponse{Type: "complete", ImportSummary: summary})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // don't let the proxy buffer frames
	c.Status(http.StatusOK)
	c.Writer.Flush()

	sink := services.NewSSEFrameWriter(c.Writer)
	if _, err := svc.Run(c.Request.Context(), shopUUID, userUUID, sheet, sink); err != nil {
		// Batch-fatal conditions already emitted their error frame; a
		// disconnect just means we stop. Either way the stream is done.
		log.Printf("import: stream ended early: %v", err)
	}
}
