package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under the key "error". A nil err yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// CheckKey records a normalized price-check key under "check_key".
func CheckKey(key string) slog.Attr {
	return slog.String("check_key", key)
}

// Plan records the base plan name under "plan".
func Plan(name string) slog.Attr {
	return slog.String("plan", name)
}

// Cycle records a billing cycle in months under "cycle".
func Cycle(months int) slog.Attr {
	return slog.Int("cycle", months)
}

// Currency records an ISO currency code under "currency".
func Currency(code string) slog.Attr {
	return slog.String("currency", code)
}

// Mode records the resolved subscription mode under "mode".
func Mode(mode any) slog.Attr {
	return slog.Any("mode", mode)
}

// Outcome records how a price check was served (hit, network, ...) under "outcome".
func Outcome(outcome string) slog.Attr {
	return slog.String("outcome", outcome)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
