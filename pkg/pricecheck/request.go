package pricecheck

import (
	"strconv"
	"strings"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
)

// GroupID tags requests that belong to one speculative batch.
type GroupID string

// Request asks for the price of one configuration.
type Request struct {
	Config checkout.SelectedConfiguration

	// Current is the subscription the change applies to. Nil lets the pricing
	// service look it up itself.
	Current checkout.CurrentSubscription

	Trial bool

	// Silent requests never fail the batch: errors are logged and the result slot stays nil.
	Silent bool
	Group  GroupID
}

// Key is the normalized cache key, e.g.
// "1member-mailpro2022:2,mailpro2022:1|12|EUR|SPRING|CH|ZH|8001|free".
// The last segment fingerprints the current subscription, since mode and
// amounts depend on it. Trial requests get a "|trial" suffix.
func (r Request) Key() string {
	addr := r.Config.BillingAddress.Normalized()

	var b strings.Builder
	b.WriteString(r.Config.PlanIDs.Key())
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(int(r.Config.Cycle)))
	b.WriteByte('|')
	b.WriteString(strings.ToUpper(strings.TrimSpace(string(r.Config.Currency))))
	b.WriteByte('|')
	b.WriteString(checkout.NormalizeCoupon(r.Config.Coupon))
	b.WriteByte('|')
	b.WriteString(addr.CountryCode)
	b.WriteByte('|')
	b.WriteString(addr.State)
	b.WriteByte('|')
	b.WriteString(addr.ZipCode)
	b.WriteByte('|')
	writeCurrentKey(&b, r.Current)
	if r.Trial {
		b.WriteString("|trial")
	}
	return b.String()
}

// writeCurrentKey writes "unresolved" for a nil subscription, "free" for
// the free sentinel, and the billed terms of a paid subscription.
func writeCurrentKey(b *strings.Builder, current checkout.CurrentSubscription) {
	if current == nil {
		b.WriteString("unresolved")
		return
	}
	sub, ok := checkout.PaidSubscription(current)
	if !ok {
		b.WriteString("free")
		return
	}
	b.WriteString("sub:")
	b.WriteString(sub.PlanIDs.Key())
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(int(sub.Cycle)))
	b.WriteByte(';')
	b.WriteString(strings.ToUpper(string(sub.Currency)))
	b.WriteByte(';')
	b.WriteString(strconv.FormatInt(sub.PeriodEnd.Unix(), 10))
	b.WriteByte(';')
	b.WriteString(strconv.FormatInt(sub.Amount, 10))
	if !sub.Renew {
		b.WriteString(";norenew")
	}
}

func (r Request) current() checkout.CurrentSubscription {
	if r.Current == nil {
		return checkout.FreeSubscription{}
	}
	return r.Current
}
