package models

// OutboundMessageRequest represents a report or alert pushed to a WhatsApp recipient.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// MovementRequest is the payload of the stock entry and exit forms.
type MovementRequest struct {
	ItemID      string `json:"item_id" binding:"required"`
	Kind        string `json:"type"`
	Quantity    string `json:"quantity" binding:"required"`
	Responsible string `json:"responsible"`
	DocNumber   string `json:"doc_number"`
	Date        string `json:"date"`
}
