package service

import (
	"fmt"
	"time"

	"github.com/sangkips/fiscal-pos/pkg/apperror"
)

// LicenseChecker validates the terminal license when a session opens
type LicenseChecker struct {
	expiresAt *time.Time
	warnDays  int
}

// NewLicenseChecker creates a checker. A nil expiry means the license never expires.
func NewLicenseChecker(expiresAt *time.Time, warnDays int) *LicenseChecker {
	return &LicenseChecker{expiresAt: expiresAt, warnDays: warnDays}
}

// Check returns a warning inside the warning window and a state error once expired
func (l *LicenseChecker) Check(now time.Time) (string, error) {
	if l == nil || l.expiresAt == nil {
		return "", nil
	}
	if !now.Before(*l.expiresAt) {
		return "", apperror.NewStateError("Terminal license expired on " + l.expiresAt.Format("2006-01-02"))
	}
	left := l.expiresAt.Sub(now)
	if left <= time.Duration(l.warnDays)*24*time.Hour {
		days := int(left.Hours()/24) + 1
		return fmt.Sprintf("Terminal license expires in %d day(s)", days), nil
	}
	return "", nil
}
