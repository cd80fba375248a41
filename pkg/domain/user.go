package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered VeloCards account holder.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Phone            string     `json:"phone,omitempty"`
	EmailVerified    bool       `json:"emailVerified"`
	PhoneVerified    bool       `json:"phoneVerified"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
	KYCStatus        string     `json:"kycStatus"` // see KYC* constants
	AccountStatus    string     `json:"accountStatus"`
	TierLevel        int        `json:"tierLevel"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
}

// DisplayName returns the user's full name, falling back to the email
// address when no name is set.
func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// KYC verification states reported by the server. The client only
// displays these; decisioning happens on the backend.
const (
	KYCNotStarted = "not_started"
	KYCPending    = "pending"
	KYCApproved   = "approved"
	KYCRejected   = "rejected"
)

// Account states.
const (
	AccountActive    = "active"
	AccountSuspended = "suspended"
	AccountClosed    = "closed"
)

// KYCInfo is the response from the KYC status endpoint.
type KYCInfo struct {
	Status          string     `json:"status"`
	Provider        string     `json:"provider,omitempty"`
	VerificationURL string     `json:"verificationUrl,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}
