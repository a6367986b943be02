package access

import "sanctuary-app/internal/domain/catalog"

func CapabilitiesFor(state AccessState, category catalog.Category) []string {
	if state != AccessGranted {
		return []string{}
	}

	switch category {
	case catalog.CategoryRoom:
		return []string{"enter", "write", "save_entries"}
	case catalog.CategoryMeditation:
		return []string{"stream", "download"}
	case catalog.CategoryBundle:
		return []string{"download", "bundle_items"}
	default:
		return []string{"download"}
	}
}

func ViewModeFromState(state AccessState) ViewMode {
	if state == AccessGranted {
		return ViewFull
	}
	return ViewPreview
}
