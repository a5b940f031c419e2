package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsCoverEveryPageAndResource(t *testing.T) {
	catalog := NewCatalog()

	for _, role := range AllRoles {
		d := catalog.DefaultsFor(role)

		require.Len(t, d.Pages, len(AllPages), "role %s", role)
		require.Len(t, d.Resources, len(AllResources), "role %s", role)

		seenPages := make(map[PageID]bool)
		for _, p := range d.Pages {
			assert.True(t, p.PageID.Valid())
			assert.False(t, seenPages[p.PageID], "duplicate page %s for %s", p.PageID, role)
			seenPages[p.PageID] = true
		}

		seenResources := make(map[ResourceID]bool)
		for _, r := range d.Resources {
			assert.True(t, r.ResourceID.Valid())
			assert.False(t, seenResources[r.ResourceID], "duplicate resource %s for %s", r.ResourceID, role)
			seenResources[r.ResourceID] = true
			for _, a := range r.Actions {
				assert.True(t, a.Valid())
			}
		}
	}
}

func TestDefaultGrantTable(t *testing.T) {
	catalog := NewCatalog()

	admin := catalog.DefaultsFor(RoleAdmin)
	for _, p := range admin.Pages {
		assert.True(t, p.CanAccess, "admin should access %s", p.PageID)
	}
	for _, r := range admin.Resources {
		assert.Len(t, r.Actions, len(AllActions), "admin should have all actions on %s", r.ResourceID)
	}

	analyst := catalog.DefaultsFor(RoleAnalyst)
	assert.True(t, pageFlag(analyst.Pages, PageDashboard))
	assert.False(t, pageFlag(analyst.Pages, PageWorkflows))
	assert.False(t, pageFlag(analyst.Pages, PageAccessControl))
	assert.Equal(t, []Action{ActionView}, resourceActions(analyst.Resources, ResourceBarChart1))
	assert.Equal(t, []Action{ActionView}, resourceActions(analyst.Resources, ResourcePieChart))
	assert.Empty(t, resourceActions(analyst.Resources, ResourceWorkflowItems))

	viewer := catalog.DefaultsFor(RoleViewer)
	assert.True(t, pageFlag(viewer.Pages, PageDashboard))
	assert.True(t, pageFlag(viewer.Pages, PageWorkflows))
	assert.False(t, pageFlag(viewer.Pages, PageAccessControl))
	assert.Equal(t, []Action{ActionView}, resourceActions(viewer.Resources, ResourceBarChart1))
	assert.Empty(t, resourceActions(viewer.Resources, ResourceBarChart2))
	assert.Equal(t, []Action{ActionView}, resourceActions(viewer.Resources, ResourceLineChart))
	assert.Empty(t, resourceActions(viewer.Resources, ResourcePieChart))
	assert.Equal(t, []Action{ActionView}, resourceActions(viewer.Resources, ResourceWorkflowItems))
}

// Admin must always keep access to the access-control page; the defaults
// are the floor every reset returns to, so they must satisfy that too.
func TestAdminDefaultKeepsAccessControl(t *testing.T) {
	d := NewCatalog().DefaultsFor(RoleAdmin)
	assert.True(t, pageFlag(d.Pages, PageAccessControl))
}

func TestDefaultsForReturnsCopies(t *testing.T) {
	catalog := NewCatalog()

	first := catalog.DefaultsFor(RoleViewer)
	first.Pages[0].CanAccess = false
	first.Resources[0].Actions = append(first.Resources[0].Actions, ActionDelete)

	second := catalog.DefaultsFor(RoleViewer)
	assert.True(t, second.Pages[0].CanAccess, "catalog mutated through returned slice")
	assert.Equal(t, []Action{ActionView}, resourceActions(second.Resources, ResourceBarChart1))
}

func TestClosedSetMembership(t *testing.T) {
	assert.True(t, Role("admin").Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())

	assert.True(t, PageID("access-control").Valid())
	assert.False(t, PageID("settings").Valid())

	assert.True(t, ResourceID("workflowItems").Valid())
	assert.False(t, ResourceID("barChart3").Valid())

	assert.True(t, Action("view").Valid())
	assert.False(t, Action("execute").Valid())
}

func pageFlag(pages []PagePermission, id PageID) bool {
	for _, p := range pages {
		if p.PageID == id {
			return p.CanAccess
		}
	}
	return false
}

func resourceActions(resources []ResourcePermission, id ResourceID) []Action {
	for _, r := range resources {
		if r.ResourceID == id {
			return r.Actions
		}
	}
	return nil
}
