package web

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/pipeline"
	"cartridge-engine/internal/resolver"
)

const technicalMessage = "internal processing error"

// cartridgeView is one entry of the cartridge listing.
type cartridgeView struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	InputFormat string `json:"inputFormat"`
	Description string `json:"description,omitempty"`
	Outbound    string `json:"outbound,omitempty"`
	Inbound     string `json:"inbound,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTransform(c *gin.Context) {
	var body any
	if !bindBody(c, &body) {
		return
	}

	s.transform(c, body)
}

func (s *Server) handleTransformBulk(c *gin.Context) {
	var body any
	if !bindBody(c, &body) {
		return
	}

	if _, ok := body.([]any); !ok {
		writeError(c, diagnostic.Functional(diagnostic.CodeRequestBodyType, diagnostic.StepValidation, "",
			"bulk request body must be a JSON list"))

		return
	}

	s.transform(c, body)
}

func (s *Server) transform(c *gin.Context, body any) {
	req := pipeline.Request{
		CartridgeID: c.Param("cartridgeId"),
		Currency:    c.GetHeader(HeaderCurrency),
		Direction:   c.GetHeader(HeaderDirection),
		RequestID:   c.GetHeader(HeaderRequestID),
		Body:        body,
	}
	if req.Direction == "" {
		req.Direction = resolver.DirectionOutbound
	}

	resp, err := s.svc.Process(c.Request.Context(), req)
	if resp.RequestID != "" {
		c.Header(HeaderRequestID, resp.RequestID)
	}

	if err != nil {
		writeError(c, err)
		return
	}

	if resp.Bulk {
		c.Header(HeaderBulkRequest, "true")
		c.JSON(http.StatusOK, resp.Results)

		return
	}

	if text, ok := resp.Body.(string); ok {
		c.Data(http.StatusOK, resp.ContentType, []byte(text))
		return
	}

	c.JSON(http.StatusOK, resp.Body)
}

func (s *Server) handleCartridges(c *gin.Context) {
	snap := s.svc.Catalog().Snapshot()

	views := make([]cartridgeView, 0, len(snap.CartridgeIDs()))
	for _, id := range snap.CartridgeIDs() {
		cs, _ := snap.Cartridge(id)

		view := cartridgeView{
			ID:          id,
			Provider:    cs.Provider,
			InputFormat: cs.InputFormat,
			Description: cs.Description,
		}

		if flow, ok := snap.Flow(id); ok {
			if flow.Outbound != nil {
				view.Outbound = flow.Outbound.FlowID
			}

			if flow.Inbound != nil {
				view.Inbound = flow.Inbound.FlowID
			}
		}

		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"cartridges": views,
		"count":      len(views),
	})
}

func (s *Server) handleReload(c *gin.Context) {
	err := s.svc.Reload()
	if err != nil {
		writeError(c, err)
		return
	}

	_, cartridges, flows, _ := s.svc.Catalog().Snapshot().Counts()

	c.JSON(http.StatusOK, gin.H{
		"status":     "reloaded",
		"cartridges": cartridges,
		"flows":      flows,
	})
}

// bindBody decodes the JSON body into out, answering 400 on failure.
func bindBody(c *gin.Context, out *any) bool {
	err := c.ShouldBindJSON(out)
	if err != nil {
		writeError(c, diagnostic.Functional(diagnostic.CodeGenericFunctional, diagnostic.StepValidation, "",
			"malformed JSON body: %v", err))

		return false
	}

	return true
}

// writeError answers FUNCTIONAL errors with 400 and their payload, and
// TECHNICAL errors with 500 and a generic message. Technical errors are
// logged with their cause.
func writeError(c *gin.Context, err error) {
	de := diagnostic.From(err, diagnostic.StepUnknown)
	payload := de.Payload()

	if de.IsFunctional() {
		c.JSON(http.StatusBadRequest, payload)
		return
	}

	log.Printf("technical error on %s %s: %v", c.Request.Method, c.Request.URL.Path, de)

	payload.Message = technicalMessage
	c.JSON(http.StatusInternalServerError, payload)
}
