package dto

type StockAdjustRequest struct {
	// Op is the ledger operation to apply to current stock.
	Op       string `json:"op" binding:"required,oneof=set add remove"`
	Quantity int    `json:"quantity" binding:"required,min=0"`
	Reason   string `json:"reason"`
}

type StockResponse struct {
	ID    string `json:"id"`
	SKU   string `json:"sku"`
	Stock int    `json:"stock"`
}
