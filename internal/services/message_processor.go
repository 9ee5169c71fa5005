package services

import (
	"context"
	"fmt"
	"strings"

	"gastos/internal/core"
	"gastos/internal/intent"
	"gastos/internal/ledger"
	"gastos/internal/log"
)

// MessageProcessor is the entry point for inbound chat messages: it checks
// the sender against the allow-list, classifies the text and dispatches it.
type MessageProcessor struct {
	dispatcher *Dispatcher
	clock      ledger.Clock
	authorized map[string]struct{}
	logger     *log.Logger
}

// NewMessageProcessor builds a processor. An empty allow-list authorizes nobody.
func NewMessageProcessor(dispatcher *Dispatcher, clock ledger.Clock, authorized []string, logger *log.Logger) *MessageProcessor {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	allowed := make(map[string]struct{}, len(authorized))
	for _, phone := range authorized {
		if p := NormalizePhone(phone); p != "" {
			allowed[p] = struct{}{}
		}
	}
	return &MessageProcessor{
		dispatcher: dispatcher,
		clock:      clock,
		authorized: allowed,
		logger:     logger.WithComponent(log.ComponentBot),
	}
}

// Authorize returns core.ErrUnauthorized unless the owner is on the allow-list.
func (p *MessageProcessor) Authorize(owner string) error {
	if _, ok := p.authorized[NormalizePhone(owner)]; !ok {
		return fmt.Errorf("%w: %s", core.ErrUnauthorized, owner)
	}
	return nil
}

// HandleMessage processes one message and returns the reply text. Unauthorized
// senders get a fixed rejection and never reach the store. The error is
// non-nil only for store failures.
func (p *MessageProcessor) HandleMessage(ctx context.Context, owner, text string) (string, error) {
	owner = NormalizePhone(owner)
	if err := p.Authorize(owner); err != nil {
		p.logger.WarnContext(ctx, "Message from unauthorized sender", log.FieldOwner, owner)
		return ReplyUnauthorized, nil
	}

	in := intent.Parse(text)
	p.logger.InfoContext(ctx, "Message received",
		log.NewFields().WithOwner(owner).WithIntent(in.Name()).ToSlice()...)

	return p.dispatcher.Dispatch(ctx, owner, in, p.clock.Today())
}

// NormalizePhone strips a channel prefix such as "whatsapp:" and keeps only
// digits and a leading '+'.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if i := strings.LastIndex(phone, ":"); i >= 0 {
		phone = phone[i+1:]
	}
	var b strings.Builder
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
