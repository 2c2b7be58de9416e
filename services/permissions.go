package services

import "botsprinter/types"

type Operation string

const (
	OpViewInventory   Operation = "view_inventory"
	OpViewHistory     Operation = "view_history"
	OpViewAnalytics   Operation = "view_analytics"
	OpExportReports   Operation = "export_reports"
	OpManageCatalog   Operation = "manage_catalog"
	OpMoveStock       Operation = "move_stock"
	OpWriteOff        Operation = "write_off"
	OpSetStorageCount Operation = "set_storage_amount"
	OpManageUsers     Operation = "manage_users"
	OpViewAuditLog    Operation = "view_audit_log"
)

var viewerOps = map[Operation]bool{
	OpViewInventory: true,
	OpViewHistory:   true,
	OpViewAnalytics: true,
	OpExportReports: true,
}

var operatorOps = map[Operation]bool{
	OpManageCatalog: true,
	OpMoveStock:     true,
	OpWriteOff:      true,
}

var adminOps = map[Operation]bool{
	OpSetStorageCount: true,
	OpManageUsers:     true,
	OpViewAuditLog:    true,
}

// CanPerform is the capability matrix. Each role includes the rights of the
// roles below it: viewer < operator < admin.
func CanPerform(role types.Role, op Operation) bool {
	switch role {
	case types.RoleAdmin:
		return viewerOps[op] || operatorOps[op] || adminOps[op]
	case types.RoleOperator:
		return viewerOps[op] || operatorOps[op]
	case types.RoleViewer:
		return viewerOps[op]
	default:
		return false
	}
}
