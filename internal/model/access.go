package model

// Access decision helpers. These are free functions over a resolved
// PermissionRecord so the freshness/caching policy of whoever fetched the
// record stays decoupled from the decision itself. Absence of data always
// degrades to deny, never to an error.

// CanAccessPage reports whether the record grants access to the given page.
func CanAccessPage(rec *PermissionRecord, page PageID) bool {
	if rec == nil {
		return false
	}
	for _, p := range rec.Pages {
		if p.PageID == page {
			return p.CanAccess
		}
	}
	return false
}

// HasAction reports whether the record grants the given action on the
// given resource.
func HasAction(rec *PermissionRecord, resource ResourceID, action Action) bool {
	if rec == nil {
		return false
	}
	for _, r := range rec.Resources {
		if r.ResourceID != resource {
			continue
		}
		for _, a := range r.Actions {
			if a == action {
				return true
			}
		}
		return false
	}
	return false
}

// CanView reports whether the record grants "view" on the resource.
func CanView(rec *PermissionRecord, resource ResourceID) bool {
	return HasAction(rec, resource, ActionView)
}

// CanCreate reports whether the record grants "create" on the resource.
func CanCreate(rec *PermissionRecord, resource ResourceID) bool {
	return HasAction(rec, resource, ActionCreate)
}

// CanEdit reports whether the record grants "edit" on the resource.
func CanEdit(rec *PermissionRecord, resource ResourceID) bool {
	return HasAction(rec, resource, ActionEdit)
}

// CanDelete reports whether the record grants "delete" on the resource.
func CanDelete(rec *PermissionRecord, resource ResourceID) bool {
	return HasAction(rec, resource, ActionDelete)
}
