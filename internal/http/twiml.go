package http

import (
	"fmt"

	"github.com/beevik/etree"
)

// BuildTwiML renders a messaging reply as
// <Response><Message>text</Message></Response>. An empty text yields an
// empty <Response/> so Twilio sends nothing.
func BuildTwiML(text string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	resp := doc.CreateElement("Response")
	if text != "" {
		resp.CreateElement("Message").SetText(text)
	}
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("render twiml: %w", err)
	}
	return out, nil
}
