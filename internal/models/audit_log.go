package models

// Resource types recorded in the audit log.
const (
	AuditResourceUser        = "user"
	AuditResourceWallet      = "wallet"
	AuditResourceTransaction = "transaction"
	AuditResourcePocket      = "savings_pocket"
)

// AuditLog records one ledger or account mutation. Changes holds a JSON
// object with the fields that mattered for the mutation, money as strings.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string `gorm:"size:50;not null" json:"action"`
	ResourceType string `gorm:"size:30;not null" json:"resource_type"`
	ResourceID   string `gorm:"size:36" json:"resource_id"`
	IPAddress    string `gorm:"size:45" json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
