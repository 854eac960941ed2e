package checkout

import (
	"regexp"
	"strings"
)

// CouponConfig describes how a coupon is presented at checkout.
// A hidden coupon still discounts but gets no line item of its own.
type CouponConfig struct {
	Code   string `json:"code" yaml:"code"`
	Hidden bool   `json:"hidden" yaml:"hidden"`
}

var giftCodePattern = regexp.MustCompile(`^[A-Z0-9]{4}(-[A-Z0-9]{4}){2,3}$`)

// NormalizeCoupon trims and upper-cases a coupon code.
func NormalizeCoupon(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsGiftCode reports whether code looks like a gift code (XXXX-XXXX-XXXX, up to four groups).
func IsGiftCode(code string) bool {
	return giftCodePattern.MatchString(NormalizeCoupon(code))
}

// ValidateCoupon judges the requested coupon by what the pricing service
// applied. Gift codes are redeemed as credit and never echoed back, so they
// always pass.
func ValidateCoupon(requested string, est Estimation) error {
	requested = NormalizeCoupon(requested)
	if requested == "" || IsGiftCode(requested) {
		return nil
	}
	if est.Coupon != nil && NormalizeCoupon(est.Coupon.Code) == requested {
		return nil
	}
	return ErrInvalidCoupon
}
