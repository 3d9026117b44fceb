package model

import "time"

type ActivityType string

const (
	ActivityLogin                 ActivityType = "LOGIN"
	ActivityLogout                ActivityType = "LOGOUT"
	ActivityPayment               ActivityType = "PAYMENT"
	ActivityAddCard               ActivityType = "ADD_CARD"
	ActivityRemoveCard            ActivityType = "REMOVE_CARD"
	ActivitySubscriptionCreated   ActivityType = "SUBSCRIPTION_CREATED"
	ActivitySubscriptionCancelled ActivityType = "SUBSCRIPTION_CANCELLED"
	ActivitySubscriptionRenewed   ActivityType = "SUBSCRIPTION_RENEWED"
	ActivityPasswordChanged       ActivityType = "PASSWORD_CHANGED"
	ActivityProfileUpdated        ActivityType = "PROFILE_UPDATED"
	ActivitySMSSent               ActivityType = "SMS_SENT"
	ActivitySMSPurchase           ActivityType = "SMS_PURCHASE"
)

type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "SUCCESS"
	ActivityStatusFailure ActivityStatus = "FAILURE"
)

// ActivityLog is an append-only audit entry for something the customer did.
type ActivityLog struct {
	ID         string
	CustomerID string
	SessionID  *string
	Type       ActivityType
	Status     ActivityStatus
	Timestamp  time.Time
	Metadata   map[string]interface{}
}
