package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"danaku/internal/logger"
	"danaku/internal/models"
)

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit entry after a mutation has committed. The mutation
// already happened, so a failed write is logged and dropped.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	log := logger.Named("audit").With("user_id", userID, "action", action, "resource_type", resourceType)

	if userID == "" {
		log.Warn("audit entry without user, dropped")
		return
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}
	if len(changes) > 0 {
		data, err := json.Marshal(changes)
		if err != nil {
			log.Errorw("failed to encode audit changes", "error", err)
			data = []byte("{}")
		}
		entry.Changes = string(data)
	}

	if err := s.db.Create(entry).Error; err != nil {
		log.Errorw("failed to write audit entry", "resource_id", resourceID, "error", err)
	}
}
