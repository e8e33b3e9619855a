package pricing

import "bundle-checkout/internal/domain"

// Audit extracts the signable subset. The gift pool is display-only and is
// left out.
func (r Result) Audit() domain.Audit {
	items := make([]domain.LineItem, len(r.LineItems))
	for i, li := range r.LineItems {
		li.Badges = append([]string{}, li.Badges...)
		items[i] = li
	}
	return domain.Audit{
		Tier:             r.Tier,
		Scope:            string(r.Scope),
		PercentOff:       r.PercentOff,
		CourseCount:      r.CourseCount,
		GiftCountAllowed: r.GiftCountAllowed,
		RuleVersion:      r.RuleVersion,
		Items:            items,
		Totals:           r.Totals,
	}
}

// GiftOptions is the unsigned helper view for gift pickers.
type GiftOptions struct {
	SelectedGifts    []string `json:"selectedGifts"`
	GiftCountAllowed int      `json:"giftCountAllowed"`
	GiftPoolSKUs     []string `json:"giftPoolSkus"`
}

// GiftOptions lists the pool SKUs the caller asked for, in pool order,
// without applying the gift cap.
func (r Result) GiftOptions(requested []string) GiftOptions {
	want := make(map[string]struct{}, len(requested))
	for _, sku := range requested {
		want[sku] = struct{}{}
	}
	selected := []string{}
	for _, sku := range r.GiftPoolSKUs {
		if _, ok := want[sku]; ok {
			selected = append(selected, sku)
			delete(want, sku)
		}
	}
	return GiftOptions{
		SelectedGifts:    selected,
		GiftCountAllowed: r.GiftCountAllowed,
		GiftPoolSKUs:     append([]string{}, r.GiftPoolSKUs...),
	}
}
