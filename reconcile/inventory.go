package reconcile

import (
	"strings"

	"dev.hon.one/nbsync/common"
)

// Chassis families whose full part number is kept as the model.
var untrimmedModelPrefixes = []string{"WS-C45", "WS-C65"}

// Vendor token removed from slugs.
const slugVendorPrefix = "WS-"

// InventoryEntry - One physical chassis member, ready for device type lookup.
type InventoryEntry struct {
	ManufacturerID int
	Model          string
	Serial         string
	Slug           string
}

// NormalizeInventory - One entry per inventory item, in input order.
func NormalizeInventory(items []common.InventoryItem, manufacturerID int) []InventoryEntry {
	entries := make([]InventoryEntry, 0, len(items))
	for _, item := range items {
		model := TrimModel(item.Model)
		entries = append(entries, InventoryEntry{
			ManufacturerID: manufacturerID,
			Model:          model,
			Serial:         item.Serial,
			Slug:           ModelSlug(model),
		})
	}
	return entries
}

// TrimModel - Drop the suffix after the last hyphen (usually a part or revision code),
// except for the modular chassis families and models without any hyphen.
func TrimModel(model string) string {
	for _, prefix := range untrimmedModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return model
		}
	}
	if index := strings.LastIndex(model, "-"); index >= 0 {
		return model[:index]
	}
	return model
}

// ModelSlug - Device type slug for a (trimmed) model.
func ModelSlug(model string) string {
	return strings.ToLower(strings.ReplaceAll(model, slugVendorPrefix, ""))
}
