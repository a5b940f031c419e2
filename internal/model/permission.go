package model

import (
	"fmt"
	"sort"
	"time"
)

// PageID identifies a navigable dashboard screen.
type PageID string

const (
	PageDashboard     PageID = "dashboard"
	PageWorkflows     PageID = "workflows"
	PageAccessControl PageID = "access-control"
)

// AllPages is a slice of every gated page.
var AllPages = []PageID{PageDashboard, PageWorkflows, PageAccessControl}

// Valid reports whether p is a known page.
func (p PageID) Valid() bool {
	switch p {
	case PageDashboard, PageWorkflows, PageAccessControl:
		return true
	}
	return false
}

// ResourceID identifies a widget or entity gated by per-action grants.
type ResourceID string

const (
	ResourceBarChart1     ResourceID = "barChart1"
	ResourceBarChart2     ResourceID = "barChart2"
	ResourceLineChart     ResourceID = "lineChart"
	ResourcePieChart      ResourceID = "pieChart"
	ResourceWorkflowItems ResourceID = "workflowItems"
)

// AllResources is a slice of every gated resource.
var AllResources = []ResourceID{
	ResourceBarChart1,
	ResourceBarChart2,
	ResourceLineChart,
	ResourcePieChart,
	ResourceWorkflowItems,
}

// Valid reports whether r is a known resource.
func (r ResourceID) Valid() bool {
	switch r {
	case ResourceBarChart1, ResourceBarChart2, ResourceLineChart, ResourcePieChart, ResourceWorkflowItems:
		return true
	}
	return false
}

// Action is a single operation a role may perform on a resource.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// AllActions is a slice of every grantable action.
var AllActions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionView, ActionCreate, ActionEdit, ActionDelete:
		return true
	}
	return false
}

// PagePermission is a single page visibility flag inside a permission record.
// JSON field names match the persisted document format.
type PagePermission struct {
	PageID    PageID `json:"pageId" binding:"required"`
	CanAccess bool   `json:"canAccess"`
}

// ResourcePermission is the set of actions a role may perform on one resource.
type ResourcePermission struct {
	ResourceID ResourceID `json:"resourceId" binding:"required"`
	Actions    []Action   `json:"actions"`
}

// PermissionRecord is the full grant set for one role. Exactly one record
// exists per role; the role is the uniqueness key in the store.
type PermissionRecord struct {
	Role      Role                 `json:"role"`
	Pages     []PagePermission     `json:"pages"`
	Resources []ResourcePermission `json:"resources"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// PermissionPatch carries a partial update to a role's record. A nil
// slice always leaves the corresponding field untouched. What a non-nil
// slice means depends on the layer: a store upsert replaces the whole
// field (so an empty slice clears it), while the permission service
// merges each entry by ID first, making an empty slice a no-op against
// an existing record.
type PermissionPatch struct {
	Pages     []PagePermission
	Resources []ResourcePermission
}

// MergePages upserts each updated entry into the existing page list by
// PageID, preserving existing order and appending entries for pages not
// present before. Neither input is mutated.
func MergePages(existing, updates []PagePermission) []PagePermission {
	merged := make([]PagePermission, len(existing))
	copy(merged, existing)

	for _, u := range updates {
		replaced := false
		for i := range merged {
			if merged[i].PageID == u.PageID {
				merged[i] = u
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, u)
		}
	}
	return merged
}

// MergeResources upserts each updated entry into the existing resource
// list by ResourceID, like MergePages.
func MergeResources(existing, updates []ResourcePermission) []ResourcePermission {
	merged := make([]ResourcePermission, len(existing))
	copy(merged, existing)

	for _, u := range updates {
		replaced := false
		for i := range merged {
			if merged[i].ResourceID == u.ResourceID {
				merged[i] = u
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, u)
		}
	}
	return merged
}

// NormalizePages validates a page list against the closed page set and
// rejects duplicate entries. The input order is preserved.
func NormalizePages(pages []PagePermission) ([]PagePermission, error) {
	seen := make(map[PageID]bool, len(pages))
	out := make([]PagePermission, 0, len(pages))
	for _, p := range pages {
		if !p.PageID.Valid() {
			return nil, fmt.Errorf("unknown page %q", p.PageID)
		}
		if seen[p.PageID] {
			return nil, fmt.Errorf("duplicate page %q", p.PageID)
		}
		seen[p.PageID] = true
		out = append(out, p)
	}
	return out, nil
}

// NormalizeResources validates a resource list against the closed resource
// and action sets, deduplicates each action set, and sorts it so stored
// documents stay diff-stable.
func NormalizeResources(resources []ResourcePermission) ([]ResourcePermission, error) {
	seen := make(map[ResourceID]bool, len(resources))
	out := make([]ResourcePermission, 0, len(resources))
	for _, r := range resources {
		if !r.ResourceID.Valid() {
			return nil, fmt.Errorf("unknown resource %q", r.ResourceID)
		}
		if seen[r.ResourceID] {
			return nil, fmt.Errorf("duplicate resource %q", r.ResourceID)
		}
		seen[r.ResourceID] = true

		actions := make([]Action, 0, len(r.Actions))
		dedup := make(map[Action]bool, len(r.Actions))
		for _, a := range r.Actions {
			if !a.Valid() {
				return nil, fmt.Errorf("unknown action %q on resource %q", a, r.ResourceID)
			}
			if !dedup[a] {
				dedup[a] = true
				actions = append(actions, a)
			}
		}
		sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

		out = append(out, ResourcePermission{ResourceID: r.ResourceID, Actions: actions})
	}
	return out, nil
}
