package cart

import (
	"encoding/json"

	"github.com/LogickStudio/demaincloset/internal/domain"
	applog "github.com/LogickStudio/demaincloset/internal/log"
)

// The cart and applied coupon persist as two independent JSON blobs.
// Persisted copies are a cache, not the source of truth: a corrupt or
// missing blob restores as empty rather than erroring.

// State serializes the line list and applied coupon. The coupon blob is
// nil when no coupon is applied.
func (e *Engine) State() (lines, coupon []byte, err error) {
	lines, err = json.Marshal(e.lines)
	if err != nil {
		return nil, nil, err
	}
	if e.applied != nil {
		coupon, err = json.Marshal(e.applied)
		if err != nil {
			return nil, nil, err
		}
	}
	return lines, coupon, nil
}

// Restore loads previously persisted state and recomputes the discount,
// so restored totals always agree with the restored lines.
func (e *Engine) Restore(lines, coupon []byte) {
	e.lines = nil
	e.applied = nil
	if len(lines) > 0 {
		var ls []Line
		if err := json.Unmarshal(lines, &ls); err != nil {
			applog.Warn(nil, "cart.restore.lines_corrupt", err, nil)
		} else {
			e.lines = ls
		}
	}
	if len(coupon) > 0 {
		var c domain.Coupon
		if err := json.Unmarshal(coupon, &c); err != nil {
			applog.Warn(nil, "cart.restore.coupon_corrupt", err, nil)
		} else {
			e.applied = &c
		}
	}
	e.recompute()
}
