package checkout

// Modifiers are the flags the composer and renderers branch on.
type Modifiers struct {
	IsProration                   bool `json:"is_proration"`
	IsScheduledChargedImmediately bool `json:"is_scheduled_charged_immediately"`
	IsScheduledChargedLater       bool `json:"is_scheduled_charged_later"`
	IsScheduled                   bool `json:"is_scheduled"`
	IsCustomBilling               bool `json:"is_custom_billing"`
}

// NewModifiers maps a mode to its flags. Optimistic estimations never claim proration.
func NewModifiers(mode Mode, optimistic bool) Modifiers {
	m := Modifiers{
		IsProration:                   mode == ModeRegular && !optimistic,
		IsScheduledChargedImmediately: mode == ModeScheduledChargedImmediately,
		IsScheduledChargedLater:       mode == ModeScheduledChargedLater,
		IsCustomBilling:               mode == ModeCustomBillings,
	}
	m.IsScheduled = m.IsScheduledChargedImmediately || m.IsScheduledChargedLater
	return m
}

// ModifiersFor derives modifiers from the mode and marker carried by est.
func ModifiersFor(est Estimation) Modifiers {
	return NewModifiers(est.SubscriptionMode, est.Optimistic)
}
