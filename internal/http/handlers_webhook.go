package http

import (
	"net/http"

	"gastos/internal/log"
)

// handleWhatsApp receives a Twilio messaging webhook and answers with TwiML.
func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentHTTP)

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		logger.InfoContext(ctx, "Invalid webhook body", log.FieldError, err.Error())
		BadRequestError("invalid request body").Write(w)
		return
	}

	if s.opts.TwilioAuthToken != "" {
		if p.IsJSON() || !validTwilioSignature(s.opts.TwilioAuthToken, s.opts.PublicBaseURL, r, p.Form()) {
			logger.WarnContext(ctx, "Rejected webhook with invalid signature",
				log.FieldClientIP, s.clientIP.ClientIP(r))
			ForbiddenError("invalid signature").Write(w)
			return
		}
	}

	from, body := p.Get("From"), p.Get("Body")
	if from == "" || body == "" {
		BadRequestError("missing From or Body").Write(w)
		return
	}

	reply, err := s.processor.HandleMessage(ctx, from, body)
	if err != nil {
		// The reply already tells the sender something went wrong.
		logger.ErrorContext(ctx, "Message handling failed", log.FieldError, err.Error())
	}

	doc, err := BuildTwiML(reply)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to render TwiML", log.FieldError, err.Error())
		InternalServerError("failed to render reply").Write(w)
		return
	}
	NewResponse().XML(doc).Write(w)
}
