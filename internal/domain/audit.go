package domain

// LineItem is one priced row of a cart. Monetary fields are fixed
// two-decimal strings so they survive a client round trip byte for byte.
type LineItem struct {
	SKU      string   `json:"sku"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	MSRP     string   `json:"msrp"`
	Price    string   `json:"price"`
	Discount string   `json:"discount"`
	Net      string   `json:"net"`
	IsGift   bool     `json:"isGift"`
	Badges   []string `json:"badges"`
}

type Totals struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

// Audit is the security-relevant projection of a pricing result. It is what
// gets signed on quote and recomputed on checkout.
type Audit struct {
	Tier             int        `json:"tier"`
	Scope            string     `json:"scope"`
	PercentOff       int        `json:"percentOff"`
	CourseCount      int        `json:"courseCount"`
	GiftCountAllowed int        `json:"giftCountAllowed"`
	RuleVersion      string     `json:"ruleVersion"`
	Items            []LineItem `json:"items"`
	Totals           Totals     `json:"totals"`
}

// SplitSKUs separates paid SKUs from gift SKUs using each item's isGift flag.
func (a Audit) SplitSKUs() (paid, gifts []string) {
	paid = make([]string, 0, len(a.Items))
	gifts = make([]string, 0)
	for _, it := range a.Items {
		if it.IsGift {
			gifts = append(gifts, it.SKU)
			continue
		}
		paid = append(paid, it.SKU)
	}
	return paid, gifts
}

// SignedAudit is the client-held token: the audit with its signature.
type SignedAudit struct {
	Audit
	Signature string `json:"signature"`
}
